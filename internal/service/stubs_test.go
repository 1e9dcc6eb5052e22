package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/repository"
)

// memSessionStore is an in-memory repository.SessionStore that counts reads.
// When gate is set, Get blocks until it is closed.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	gets     atomic.Int32
	gate     chan struct{}
	entered  chan struct{}
	saveErr  error
	deleted  []string
}

func newMemSessionStore(sessions ...models.Session) *memSessionStore {
	m := &memSessionStore{sessions: map[string]models.Session{}}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *memSessionStore) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.gets.Add(1)
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memSessionStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.sessions[s.ID]; !ok {
		return repository.ErrNotFound
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memSessionStore) stored(id string) models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func liveSession(id string) models.Session {
	now := time.Now().UTC()
	return models.Session{ID: id, UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
}

// fixedClock always reports t.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now(context.Context) time.Time { return c.t }

func ptr(t time.Time) *time.Time { return &t }
