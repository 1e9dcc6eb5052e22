package service

import (
	"context"
	"time"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/repository"
)

// SessionJanitor deletes expired sessions from the store.
type SessionJanitor struct {
	store repository.SessionStore
	log   *logger.Logger
}

func NewSessionJanitor(store repository.SessionStore, log *logger.Logger) *SessionJanitor {
	return &SessionJanitor{store: store, log: logger.OrNop(log)}
}

const defaultSweepInterval = 10 * time.Minute

// Run ticks at the given interval until ctx is canceled.
func (j *SessionJanitor) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = defaultSweepInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			j.sweep(ctx, now)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context, now time.Time) {
	n, err := j.store.DeleteExpired(ctx, now.UTC())
	if err != nil {
		j.log.Warnw("session_sweep_failed", "err", err)
		return
	}
	if n > 0 {
		j.log.Infow("sessions_expired", "count", n)
	}
}
