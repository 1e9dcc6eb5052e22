package models

import "time"

// Session is the server-side state attached to one signed-in client.
type Session struct {
	ID         string           `json:"id"`
	UserID     int              `json:"user_id"`
	Simulation SimulationWindow `json:"simulation"`
	DateRange  DateRange        `json:"date_range"`
	CreatedAt  time.Time        `json:"created_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SimulationWindow overrides "now" for the session while IsActive is set.
// Both bounds are nil when inactive.
type SimulationWindow struct {
	IsActive  bool       `json:"is_active"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// DateRange is the reporting period a user picked for the session.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// QueryScope bounds date-filtered lists. A nil Start is unbounded.
type QueryScope struct {
	Start *time.Time
	End   time.Time
}

// SimulationStatus is the wire form of a SimulationWindow.
type SimulationStatus struct {
	IsSimulation bool     `json:"is_simulation"`
	StartDate    *UTCTime `json:"startDate_utc"`
	EndDate      *UTCTime `json:"endDate_utc"`
}

func (w SimulationWindow) Status() SimulationStatus {
	return SimulationStatus{
		IsSimulation: w.IsActive,
		StartDate:    UTCPtr(w.StartDate),
		EndDate:      UTCPtr(w.EndDate),
	}
}

// DateRangeStatus is the wire form of a DateRange.
type DateRangeStatus struct {
	StartDate *UTCTime `json:"start_date_utc"`
	EndDate   *UTCTime `json:"end_date_utc"`
}

func (r DateRange) Status() DateRangeStatus {
	return DateRangeStatus{StartDate: UTCPtr(r.Start), EndDate: UTCPtr(r.End)}
}
