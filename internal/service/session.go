package service

import (
	"context"
	"fmt"
	"time"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"

	"github.com/google/uuid"
)

const defaultSessionTTL = 24 * time.Hour

type SessionService struct {
	store repository.SessionStore
	cache *SessionCache
	ttl   time.Duration
	now   func() time.Time
	log   *logger.Logger
}

func NewSessionService(store repository.SessionStore, cache *SessionCache, ttl time.Duration, log *logger.Logger) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{store: store, cache: cache, ttl: ttl, now: time.Now, log: logger.OrNop(log)}
}

// Create starts a session for userID with simulation off and no date range.
func (s *SessionService) Create(ctx context.Context, userID int) (models.Session, error) {
	now := s.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, &sess); err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	s.log.Infow("session_created", "session_id", sess.ID, "user_id", userID)
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (models.Session, error) {
	return s.cache.Load(ctx, id)
}

// SetDateRange replaces the session's reporting period. Nil bounds clear it.
func (s *SessionService) SetDateRange(ctx context.Context, id string, r models.DateRange) (models.DateRange, error) {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return models.DateRange{}, invalid(ErrInvalidRange, "end_date_utc must not be before start_date_utc")
	}
	sess, err := s.cache.Load(ctx, id)
	if err != nil {
		return models.DateRange{}, err
	}
	sess.DateRange = models.DateRange{Start: utcPtr(r.Start), End: utcPtr(r.End)}
	if err := s.cache.Save(ctx, sess); err != nil {
		s.log.Errorw("date_range_save_failed", "session_id", id, "err", err)
		return models.DateRange{}, err
	}
	return sess.DateRange, nil
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.cache.Invalidate(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Infow("session_deleted", "session_id", id)
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
