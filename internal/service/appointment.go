package service

import (
	"context"
	"strings"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"
)

const dayLayout = "2006-01-02"

type AppointmentParams struct {
	MemberID   int64
	EmployeeID int64
	StartTime  time.Time
	EndTime    time.Time
	Remarks    string
}

func (p AppointmentParams) validate() error {
	switch {
	case p.MemberID <= 0 || p.EmployeeID <= 0:
		return invalid(ErrInvalidInput, "member_id and employee_id must be positive")
	case p.StartTime.IsZero() || p.EndTime.IsZero():
		return invalid(ErrInvalidInput, "starttime_utc and endtime_utc are required")
	case !p.EndTime.After(p.StartTime):
		return invalid(ErrInvalidInput, "endtime_utc must be after starttime_utc")
	}
	return nil
}

type AppointmentService struct {
	repo  repository.AppointmentRepo
	clock Clock
	now   func() time.Time
}

func NewAppointmentService(repo repository.AppointmentRepo, clock Clock) *AppointmentService {
	return &AppointmentService{repo: repo, clock: clock, now: time.Now}
}

func (s *AppointmentService) Create(ctx context.Context, p AppointmentParams) (models.Appointment, error) {
	if err := p.validate(); err != nil {
		return models.Appointment{}, err
	}
	a := models.Appointment{
		MemberID:   p.MemberID,
		EmployeeID: p.EmployeeID,
		StartTime:  models.NewUTCTime(p.StartTime),
		EndTime:    models.NewUTCTime(p.EndTime),
		Remarks:    strings.TrimSpace(p.Remarks),
		CreatedAt:  models.NewUTCTime(s.now()),
	}
	id, err := s.repo.Create(ctx, &a)
	if err != nil {
		return models.Appointment{}, err
	}
	a.ID = id
	return a, nil
}

// ForDay lists appointments starting on a local calendar day in tz. An empty
// day means the session clock's today in tz; an empty tz means UTC.
func (s *AppointmentService) ForDay(ctx context.Context, day, tz string) ([]models.Appointment, error) {
	from, to, err := s.dayBounds(ctx, day, tz)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBetween(ctx, from, to)
}

// dayBounds returns the UTC half-open interval covering day in tz.
func (s *AppointmentService) dayBounds(ctx context.Context, day, tz string) (time.Time, time.Time, error) {
	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, time.Time{}, invalid(ErrInvalidInput, "unknown timezone "+tz)
		}
		loc = l
	}
	if day == "" {
		day = s.clock.Now(ctx).In(loc).Format(dayLayout)
	}
	start, err := time.ParseInLocation(dayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalid(ErrInvalidInput, "date must be YYYY-MM-DD")
	}
	return start.UTC(), start.AddDate(0, 0, 1).UTC(), nil
}
