package repository

import (
	"context"
	"errors"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/pagination"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by lookups that match no row or key.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore persists server-side sessions. Get returns ErrNotFound for
// unknown or expired ids.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TimetableRepo interface {
	Create(ctx context.Context, t *models.Timetable) (int64, error)
	Current(ctx context.Context, employeeID int64, now time.Time, scope models.QueryScope) (*models.Timetable, error)
	Upcoming(ctx context.Context, employeeID int64, now time.Time, scope models.QueryScope) ([]models.Timetable, error)
}

type AppointmentRepo interface {
	Create(ctx context.Context, a *models.Appointment) (int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
}

// VoucherQuery selects one page of member vouchers. At most one of Offset,
// After and Before applies; Limit is passed through to SQL as-is.
type VoucherQuery struct {
	Search string
	Limit  int
	Offset int
	After  *pagination.Cursor
	Before *pagination.Cursor
}

type VoucherRepo interface {
	Create(ctx context.Context, v *models.MemberVoucher) (int64, error)
	List(ctx context.Context, q VoucherQuery) ([]models.MemberVoucher, error)
	Count(ctx context.Context, search string) (int, error)
}

type Repository struct {
	Auth         Authorization
	Sessions     SessionStore
	Timetables   TimetableRepo
	Appointments AppointmentRepo
	Vouchers     VoucherRepo
}

// NewRepository wires the SQL repositories. sessions overrides the SQL
// session store when non-nil (e.g. the Redis store).
func NewRepository(db *sqlx.DB, sessions SessionStore) *Repository {
	if sessions == nil {
		sessions = NewSessionSQL(db)
	}
	return &Repository{
		Auth:         NewUserRepository(db),
		Sessions:     sessions,
		Timetables:   NewTimetableSQL(db),
		Appointments: NewAppointmentSQL(db),
		Vouchers:     NewVoucherSQL(db),
	}
}
