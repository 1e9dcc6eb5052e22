package service

import (
	"context"
	"testing"
	"time"

	"cleo_backend/internal/models"
)

func TestSessionClock(t *testing.T) {
	wall := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	simStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := SessionClock{Base: fixedClock{wall}}

	if got := clock.Now(context.Background()); !got.Equal(wall) {
		t.Fatalf("no session: got %v", got)
	}

	s := liveSession("s1")
	ctx := WithSession(context.Background(), s)
	if got := clock.Now(ctx); !got.Equal(wall) {
		t.Fatalf("inactive window: got %v", got)
	}

	s.Simulation = models.SimulationWindow{IsActive: true, StartDate: &simStart}
	ctx = WithSession(context.Background(), s)
	if got := clock.Now(ctx); !got.Equal(simStart) {
		t.Fatalf("active window: got %v, want %v", got, simStart)
	}
}

func TestScopeFor(t *testing.T) {
	wall := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := SessionClock{Base: fixedClock{wall}}
	rangeStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	simStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	simEnd := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	s := liveSession("s1")
	s.DateRange = models.DateRange{Start: &rangeStart}

	scope := ScopeFor(WithSession(context.Background(), s), clock)
	if scope.Start == nil || !scope.Start.Equal(rangeStart) || !scope.End.Equal(wall) {
		t.Fatalf("date range scope: %+v", scope)
	}

	s.Simulation = models.SimulationWindow{IsActive: true, StartDate: &simStart, EndDate: &simEnd}
	scope = ScopeFor(WithSession(context.Background(), s), clock)
	if !scope.Start.Equal(simStart) || !scope.End.Equal(simEnd) {
		t.Fatalf("simulation scope: %+v", scope)
	}

	scope = ScopeFor(context.Background(), clock)
	if scope.Start != nil || !scope.End.Equal(wall) {
		t.Fatalf("no session scope: %+v", scope)
	}
}

func TestScopeFor_StartOnlyWindow(t *testing.T) {
	wall := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := SessionClock{Base: fixedClock{wall}}
	simStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rangeStart := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s := liveSession("s1")
	s.Simulation = models.SimulationWindow{IsActive: true, StartDate: &simStart}
	ctx := WithSession(context.Background(), s)

	scope := ScopeFor(ctx, clock)
	if scope.Start == nil || !scope.Start.Equal(simStart) {
		t.Fatalf("start: %+v", scope)
	}
	if !scope.End.Equal(wall) {
		t.Fatalf("end: got %v, want unsimulated now %v", scope.End, wall)
	}
	if !clock.Now(ctx).Equal(simStart) {
		t.Fatal("clock must still report the simulated now")
	}

	s.DateRange = models.DateRange{Start: &rangeStart, End: &rangeEnd}
	scope = ScopeFor(WithSession(context.Background(), s), clock)
	if !scope.Start.Equal(simStart) || !scope.End.Equal(rangeEnd) {
		t.Fatalf("start-only window with date range: %+v", scope)
	}
}
