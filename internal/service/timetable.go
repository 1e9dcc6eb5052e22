package service

import (
	"context"
	"fmt"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"
)

// TimetableParams describes a new employee timetable. RestDayNumber is the
// ISO weekday (1 = Monday .. 7 = Sunday).
type TimetableParams struct {
	EmployeeID     int64
	RestDayNumber  int
	EffectiveStart time.Time
	EffectiveEnd   *time.Time
}

func (p TimetableParams) validate() error {
	switch {
	case p.EmployeeID <= 0:
		return invalid(ErrInvalidInput, "employee_id must be positive")
	case p.RestDayNumber < 1 || p.RestDayNumber > 7:
		return invalid(ErrInvalidInput, "rest_day_number must be between 1 and 7")
	case p.EffectiveStart.IsZero():
		return invalid(ErrInvalidInput, "effective_startdate_utc is required")
	case p.EffectiveEnd != nil && p.EffectiveEnd.Before(p.EffectiveStart):
		return invalid(ErrInvalidInput, "effective_enddate_utc must not be before effective_startdate_utc")
	}
	return nil
}

type TimetableService struct {
	repo  repository.TimetableRepo
	clock Clock
	now   func() time.Time
}

func NewTimetableService(repo repository.TimetableRepo, clock Clock) *TimetableService {
	return &TimetableService{repo: repo, clock: clock, now: time.Now}
}

// Create stores a timetable. created_at is the real time even while the
// session is simulated.
func (s *TimetableService) Create(ctx context.Context, p TimetableParams) (models.Timetable, error) {
	if err := p.validate(); err != nil {
		return models.Timetable{}, err
	}
	t := models.Timetable{
		EmployeeID:     p.EmployeeID,
		RestDayNumber:  p.RestDayNumber,
		EffectiveStart: models.NewUTCTime(p.EffectiveStart),
		EffectiveEnd:   models.UTCPtr(p.EffectiveEnd),
		CreatedAt:      models.NewUTCTime(s.now()),
	}
	id, err := s.repo.Create(ctx, &t)
	if err != nil {
		return models.Timetable{}, err
	}
	t.ID = id
	return t, nil
}

// CurrentAndUpcoming resolves an employee's timetables relative to at, or to
// the session clock when at is nil.
func (s *TimetableService) CurrentAndUpcoming(ctx context.Context, employeeID int64, at *time.Time) (models.CurrentAndUpcoming, error) {
	if employeeID <= 0 {
		return models.CurrentAndUpcoming{}, invalid(ErrInvalidInput, "employee id must be positive")
	}
	now := s.clock.Now(ctx)
	if at != nil {
		now = at.UTC()
	}
	scope := ScopeFor(ctx, s.clock)

	current, err := s.repo.Current(ctx, employeeID, now, scope)
	if err != nil {
		return models.CurrentAndUpcoming{}, fmt.Errorf("current timetable: %w", err)
	}
	upcoming, err := s.repo.Upcoming(ctx, employeeID, now, scope)
	if err != nil {
		return models.CurrentAndUpcoming{}, fmt.Errorf("upcoming timetables: %w", err)
	}

	out := models.CurrentAndUpcoming{Current: []models.Timetable{}, Upcoming: upcoming}
	if current != nil {
		out.Current = append(out.Current, *current)
	}
	if out.Upcoming == nil {
		out.Upcoming = []models.Timetable{}
	}
	if len(out.Current) == 0 && len(out.Upcoming) == 0 {
		return models.CurrentAndUpcoming{}, ErrNoTimetable
	}
	return out, nil
}
