package service

import (
	"context"
	"time"

	"cleo_backend/internal/models"
)

// Clock supplies "now" for date-bounded business queries.
type Clock interface {
	Now(ctx context.Context) time.Time
}

// SystemClock is the real UTC wall clock.
type SystemClock struct{}

func (SystemClock) Now(context.Context) time.Time { return time.Now().UTC() }

// SessionClock returns the start of the request session's simulation window
// while it is active, and Base otherwise.
type SessionClock struct {
	Base Clock
}

func NewSessionClock() SessionClock { return SessionClock{Base: SystemClock{}} }

func (c SessionClock) Now(ctx context.Context) time.Time {
	if s, ok := SessionFrom(ctx); ok {
		if w := s.Simulation; w.IsActive && w.StartDate != nil {
			return w.StartDate.UTC()
		}
	}
	if c.Base == nil {
		return time.Now().UTC()
	}
	return c.Base.Now(ctx)
}

type sessionCtxKey struct{}

// WithSession attaches the resolved request session to ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(models.Session)
	return s, ok
}

// ScopeFor returns the creation-time bounds for list queries: the simulation
// window while it is active, otherwise the session's date range. A missing
// end falls back to the date range end and then to the unsimulated now, so
// a start-only window still spans [start, now].
func ScopeFor(ctx context.Context, clock Clock) models.QueryScope {
	var start, end *time.Time
	if s, ok := SessionFrom(ctx); ok {
		start, end = s.DateRange.Start, s.DateRange.End
		if s.Simulation.IsActive {
			start = s.Simulation.StartDate
			if s.Simulation.EndDate != nil {
				end = s.Simulation.EndDate
			}
		}
	}
	scope := models.QueryScope{Start: start}
	if end != nil {
		scope.End = end.UTC()
	} else {
		scope.End = wallNow(ctx, clock)
	}
	return scope
}

// wallNow is clock's now with any session simulation stripped off.
func wallNow(ctx context.Context, clock Clock) time.Time {
	switch c := clock.(type) {
	case SessionClock:
		if c.Base != nil {
			return c.Base.Now(ctx)
		}
		return SystemClock{}.Now(ctx)
	case nil:
		return SystemClock{}.Now(ctx)
	}
	return clock.Now(ctx)
}
