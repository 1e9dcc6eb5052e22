package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleo_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type TimetableSQL struct {
	db *sqlx.DB
}

func NewTimetableSQL(db *sqlx.DB) *TimetableSQL { return &TimetableSQL{db: db} }

var _ TimetableRepo = (*TimetableSQL)(nil)

const (
	insertTimetableSQL = `
		INSERT INTO employee_timetables (employee_id, rest_day_number, effective_startdate, effective_enddate, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id
	`
	selectTimetableColumns = `SELECT id, employee_id, rest_day_number, effective_startdate, effective_enddate, created_at FROM employee_timetables`
)

// currentStartSlack lets a timetable starting within the next day count as
// current.
const currentStartSlack = 24 * time.Hour

func (r *TimetableSQL) Create(ctx context.Context, t *models.Timetable) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertTimetableSQL),
		t.EmployeeID,
		t.RestDayNumber,
		t.EffectiveStart.UTC(),
		toNullTime(t.EffectiveEnd.TimePtr()),
		t.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert timetable: %w", err)
	}
	return id, nil
}

// scopeConds restricts rows to those created inside scope.
func scopeConds(col string, scope models.QueryScope) ([]string, []any) {
	var (
		conds []string
		args  []any
	)
	if scope.Start != nil {
		conds = append(conds, col+" >= ?")
		args = append(args, scope.Start.UTC())
	}
	conds = append(conds, col+" <= ?")
	args = append(args, scope.End.UTC())
	return conds, args
}

// Current returns the latest timetable in effect at now, or nil.
func (r *TimetableSQL) Current(ctx context.Context, employeeID int64, now time.Time, scope models.QueryScope) (*models.Timetable, error) {
	conds := []string{
		"employee_id = ?",
		"effective_startdate <= ?",
		"(effective_enddate IS NULL OR effective_enddate >= ?)",
	}
	args := []any{employeeID, now.Add(currentStartSlack).UTC(), now.UTC()}
	sc, sa := scopeConds("created_at", scope)
	conds, args = append(conds, sc...), append(args, sa...)

	q := selectTimetableColumns + " WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY effective_startdate DESC LIMIT 1"

	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, r.db.Rebind(q), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select current timetable: %w", err)
	}
	return &t, nil
}

// Upcoming returns timetables starting after now, soonest first.
func (r *TimetableSQL) Upcoming(ctx context.Context, employeeID int64, now time.Time, scope models.QueryScope) ([]models.Timetable, error) {
	conds := []string{"employee_id = ?", "effective_startdate > ?"}
	args := []any{employeeID, now.UTC()}
	sc, sa := scopeConds("created_at", scope)
	conds, args = append(conds, sc...), append(args, sa...)

	q := selectTimetableColumns + " WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY effective_startdate ASC"

	out := make([]models.Timetable, 0)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select upcoming timetables: %w", err)
	}
	return out, nil
}
