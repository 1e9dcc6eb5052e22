package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cleo_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var timetableColumns = []string{"id", "employee_id", "rest_day_number", "effective_startdate", "effective_enddate", "created_at"}

func TestTimetableSQL_CurrentUsesSlackAndScope(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	scopeStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	scope := models.QueryScope{Start: &scopeStart, End: now}

	query := selectTimetableColumns + " WHERE employee_id = ? AND effective_startdate <= ? AND " +
		"(effective_enddate IS NULL OR effective_enddate >= ?) AND created_at >= ? AND created_at <= ? " +
		"ORDER BY effective_startdate DESC LIMIT 1"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(5), now.Add(24*time.Hour), now, scopeStart, now).
		WillReturnRows(sqlmock.NewRows(timetableColumns).
			AddRow(1, 5, 6, now.Add(-time.Hour), nil, scopeStart))

	got, err := NewTimetableSQL(db).Current(context.Background(), 5, now, scope)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got == nil || got.ID != 1 || got.EffectiveEnd != nil || got.RestDayNumber != 6 {
		t.Fatalf("unexpected timetable %+v", got)
	}
}

func TestTimetableSQL_UpcomingUnboundedScope(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	end := now.Add(60 * 24 * time.Hour)
	query := selectTimetableColumns + " WHERE employee_id = ? AND effective_startdate > ? AND created_at <= ? ORDER BY effective_startdate ASC"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(5), now, now).
		WillReturnRows(sqlmock.NewRows(timetableColumns).
			AddRow(2, 5, 0, now.Add(48*time.Hour), end, now).
			AddRow(3, 5, 1, now.Add(72*time.Hour), nil, now))

	got, err := NewTimetableSQL(db).Upcoming(context.Background(), 5, now, models.QueryScope{End: now})
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	if len(got) != 2 || got[0].EffectiveEnd == nil || !got[0].EffectiveEnd.Equal(end) {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestTimetableSQL_CurrentNone(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, employee_id").WillReturnRows(sqlmock.NewRows(timetableColumns))

	got, err := NewTimetableSQL(db).Current(context.Background(), 1, time.Now(), models.QueryScope{End: time.Now()})
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got %+v, %v", got, err)
	}
}
