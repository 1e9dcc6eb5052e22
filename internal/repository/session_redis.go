package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleo_backend/internal/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:"

// SessionRedis keeps each session as a JSON value whose key expires with the
// session.
type SessionRedis struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionRedis(client *redis.Client) *SessionRedis {
	return &SessionRedis{client: client, now: time.Now}
}

var _ SessionStore = (*SessionRedis)(nil)

func sessionKey(id string) string { return sessionKeyPrefix + id }

func (r *SessionRedis) Create(ctx context.Context, s *models.Session) error {
	return r.write(ctx, s, false)
}

func (r *SessionRedis) Get(ctx context.Context, id string) (*models.Session, error) {
	b, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(r.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Save overwrites an existing session; it never resurrects an expired key.
func (r *SessionRedis) Save(ctx context.Context, s *models.Session) error {
	return r.write(ctx, s, true)
}

func (r *SessionRedis) write(ctx context.Context, s *models.Session, mustExist bool) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrNotFound
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	key := sessionKey(s.ID)
	if !mustExist {
		if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
			return fmt.Errorf("redis set session: %w", err)
		}
		return nil
	}
	ok, err := r.client.SetXX(ctx, key, b, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis update session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis drops expired keys itself.
func (r *SessionRedis) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
