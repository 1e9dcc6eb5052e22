package repository

import (
	"context"
	"fmt"
	"time"

	"cleo_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type AppointmentSQL struct {
	db *sqlx.DB
}

func NewAppointmentSQL(db *sqlx.DB) *AppointmentSQL { return &AppointmentSQL{db: db} }

var _ AppointmentRepo = (*AppointmentSQL)(nil)

const (
	insertAppointmentSQL = `
		INSERT INTO appointments (member_id, employee_id, starttime, endtime, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id
	`
	selectAppointmentsBetweenSQL = `
		SELECT id, member_id, employee_id, starttime, endtime, remarks, created_at
		FROM appointments WHERE starttime >= ? AND starttime < ?
		ORDER BY starttime ASC, id ASC
	`
)

func (r *AppointmentSQL) Create(ctx context.Context, a *models.Appointment) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertAppointmentSQL),
		a.MemberID,
		a.EmployeeID,
		a.StartTime.UTC(),
		a.EndTime.UTC(),
		a.Remarks,
		a.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

// ListBetween returns appointments starting in the half-open range [from, to).
func (r *AppointmentSQL) ListBetween(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(selectAppointmentsBetweenSQL), from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("select appointments: %w", err)
	}
	return out, nil
}
