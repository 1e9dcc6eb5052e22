package service

import (
	"context"
	"time"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/models"
)

// ToggleParams is a requested simulation state. Bounds are ignored when
// IsSimulation is false.
type ToggleParams struct {
	IsSimulation bool
	StartDate    *time.Time
	EndDate      *time.Time
}

// window validates p and returns the window it describes.
func (p ToggleParams) window() (models.SimulationWindow, error) {
	if !p.IsSimulation {
		return models.SimulationWindow{}, nil
	}
	if p.StartDate == nil || p.StartDate.IsZero() {
		return models.SimulationWindow{}, invalid(ErrInvalidWindow, "startDate_utc is required to enable simulation")
	}
	if p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return models.SimulationWindow{}, invalid(ErrInvalidWindow, "endDate_utc must not be before startDate_utc")
	}
	return models.SimulationWindow{
		IsActive:  true,
		StartDate: utcPtr(p.StartDate),
		EndDate:   utcPtr(p.EndDate),
	}, nil
}

type SimulationService struct {
	cache *SessionCache
	log   *logger.Logger
}

func NewSimulationService(cache *SessionCache, log *logger.Logger) *SimulationService {
	return &SimulationService{cache: cache, log: logger.OrNop(log)}
}

// Window returns the session's current simulation window.
func (s *SimulationService) Window(ctx context.Context, sessionID string) (models.SimulationWindow, error) {
	sess, err := s.cache.Load(ctx, sessionID)
	if err != nil {
		return models.SimulationWindow{}, err
	}
	return sess.Simulation, nil
}

// Toggle validates p, persists the new window and only then reports success.
// On invalid input the stored window is left untouched.
func (s *SimulationService) Toggle(ctx context.Context, sessionID string, p ToggleParams) (models.SimulationWindow, error) {
	w, err := p.window()
	if err != nil {
		return models.SimulationWindow{}, err
	}
	sess, err := s.cache.Load(ctx, sessionID)
	if err != nil {
		return models.SimulationWindow{}, err
	}
	sess.Simulation = w
	if err := s.cache.Save(ctx, sess); err != nil {
		s.log.Errorw("sim_toggle_failed", "session_id", sessionID, "err", err)
		return models.SimulationWindow{}, err
	}
	s.log.Infow("sim_toggled", "session_id", sessionID, "active", w.IsActive)
	return w, nil
}
