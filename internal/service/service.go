package service

import (
	"context"
	"time"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"

	"github.com/maypok86/otter/v2/stats"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	SignIn(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (TokenClaims, error)
	SignOut(ctx context.Context, sessionID string) error
}

// Sessions exposes the per-session state other than the simulation window.
type Sessions interface {
	Create(ctx context.Context, userID int) (models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	SetDateRange(ctx context.Context, id string, r models.DateRange) (models.DateRange, error)
	Delete(ctx context.Context, id string) error
}

// Simulation reads and toggles the session's simulation window.
type Simulation interface {
	Window(ctx context.Context, sessionID string) (models.SimulationWindow, error)
	Toggle(ctx context.Context, sessionID string, p ToggleParams) (models.SimulationWindow, error)
}

type Timetables interface {
	Create(ctx context.Context, p TimetableParams) (models.Timetable, error)
	CurrentAndUpcoming(ctx context.Context, employeeID int64, at *time.Time) (models.CurrentAndUpcoming, error)
}

type Appointments interface {
	Create(ctx context.Context, p AppointmentParams) (models.Appointment, error)
	ForDay(ctx context.Context, day, tz string) ([]models.Appointment, error)
}

type Vouchers interface {
	Create(ctx context.Context, p VoucherParams) (models.MemberVoucher, error)
	List(ctx context.Context, p VoucherListParams) (models.MemberVoucherPage, error)
}

// Janitor runs the background loop that purges expired sessions.
// Stop via context cancellation in main() for graceful shutdown.
type Janitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization Authorization
	Sessions      Sessions
	Simulation    Simulation
	Timetables    Timetables
	Appointments  Appointments
	Vouchers      Vouchers
	Janitor       Janitor

	// CacheStats reports session cache lookups. Nil when no cache is wired.
	CacheStats func() stats.Stats
}

// Options carries the tunables main() reads from config.
type Options struct {
	SigningKey string
	TokenTTL   time.Duration
	SessionTTL time.Duration
	CacheTTL   time.Duration
	CacheSize  int
	Log        *logger.Logger
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	log := logger.OrNop(opts.Log)
	cache := NewSessionCache(repos.Sessions, opts.CacheTTL, opts.CacheSize)
	clock := NewSessionClock()
	sessions := NewSessionService(repos.Sessions, cache, opts.SessionTTL, log.Named("session"))

	return &Service{
		Authorization: NewAuthService(repos.Auth, sessions, AuthConfig{SigningKey: opts.SigningKey, TokenTTL: opts.TokenTTL}),
		Sessions:      sessions,
		Simulation:    NewSimulationService(cache, log.Named("simulation")),
		Timetables:    NewTimetableService(repos.Timetables, clock),
		Appointments:  NewAppointmentService(repos.Appointments, clock),
		Vouchers:      NewVoucherService(repos.Vouchers, log.Named("vouchers")),
		Janitor:       NewSessionJanitor(repos.Sessions, log.Named("janitor")),
		CacheStats:    cache.Stats,
	}
}
