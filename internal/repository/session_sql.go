package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cleo_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// SessionSQL keeps sessions in the sessions table.
type SessionSQL struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionSQL(db *sqlx.DB) *SessionSQL {
	return &SessionSQL{db: db, now: time.Now}
}

var _ SessionStore = (*SessionSQL)(nil)

const (
	insertSessionSQL = `
		INSERT INTO sessions (id, user_id, is_simulation, sim_start, sim_end, range_start, range_end, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectSessionSQL = `
		SELECT id, user_id, is_simulation, sim_start, sim_end, range_start, range_end, created_at, expires_at
		FROM sessions WHERE id = ? AND expires_at > ?
	`
	updateSessionSQL = `
		UPDATE sessions SET is_simulation = ?, sim_start = ?, sim_end = ?, range_start = ?, range_end = ?, expires_at = ?
		WHERE id = ?
	`
	deleteSessionSQL        = `DELETE FROM sessions WHERE id = ?`
	deleteExpiredSessionSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

type sessionRow struct {
	ID           string       `db:"id"`
	UserID       int          `db:"user_id"`
	IsSimulation bool         `db:"is_simulation"`
	SimStart     sql.NullTime `db:"sim_start"`
	SimEnd       sql.NullTime `db:"sim_end"`
	RangeStart   sql.NullTime `db:"range_start"`
	RangeEnd     sql.NullTime `db:"range_end"`
	CreatedAt    time.Time    `db:"created_at"`
	ExpiresAt    time.Time    `db:"expires_at"`
}

func (r sessionRow) toModel() *models.Session {
	return &models.Session{
		ID:     r.ID,
		UserID: r.UserID,
		Simulation: models.SimulationWindow{
			IsActive:  r.IsSimulation,
			StartDate: nullTimePtr(r.SimStart),
			EndDate:   nullTimePtr(r.SimEnd),
		},
		DateRange: models.DateRange{
			Start: nullTimePtr(r.RangeStart),
			End:   nullTimePtr(r.RangeEnd),
		},
		CreatedAt: r.CreatedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *SessionSQL) Create(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(insertSessionSQL),
		s.ID,
		s.UserID,
		s.Simulation.IsActive,
		toNullTime(s.Simulation.StartDate),
		toNullTime(s.Simulation.EndDate),
		toNullTime(s.DateRange.Start),
		toNullTime(s.DateRange.End),
		s.CreatedAt.UTC(),
		s.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionSQL) Get(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectSessionSQL), id, r.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return row.toModel(), nil
}

// Save overwrites the mutable session fields.
func (r *SessionSQL) Save(ctx context.Context, s *models.Session) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(updateSessionSQL),
		s.Simulation.IsActive,
		toNullTime(s.Simulation.StartDate),
		toNullTime(s.Simulation.EndDate),
		toNullTime(s.DateRange.Start),
		toNullTime(s.DateRange.End),
		s.ExpiresAt.UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SessionSQL) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(deleteSessionSQL), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionSQL) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(deleteExpiredSessionSQL), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
