package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cleo_backend/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Runs against a live server only when TEST_REDIS_ADDR is set.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionRedis_Lifecycle(t *testing.T) {
	store := NewSessionRedis(newTestRedis(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	s := &models.Session{ID: uuid.NewString(), UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	start := now.Add(-24 * time.Hour)
	s.Simulation = models.SimulationWindow{IsActive: true, StartDate: &start}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Simulation.IsActive || !got.Simulation.StartDate.Equal(start) {
		t.Fatalf("unexpected window %+v", got.Simulation)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Save(ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save must not recreate a deleted session, got %v", err)
	}
}

func TestSessionRedis_RejectsExpired(t *testing.T) {
	store := NewSessionRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	s := &models.Session{ID: "x", ExpiresAt: time.Now().Add(-time.Second)}
	if err := store.Create(context.Background(), s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}
