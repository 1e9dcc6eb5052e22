package apiclient

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const simulationPath = "/api/v1/session/sim"

// SimulationState is the client's view of the session's simulation window.
// Bounds are in the client's zone.
type SimulationState struct {
	IsSimulation bool
	StartDate    *time.Time
	EndDate      *time.Time
	Loaded       bool
	Loading      bool
	// Err holds the message of the last failed fetch or toggle.
	Err string
}

type simulationStatus struct {
	IsSimulation bool       `json:"is_simulation"`
	StartDate    *time.Time `json:"startDate_utc"`
	EndDate      *time.Time `json:"endDate_utc"`
}

type flight struct {
	done chan struct{}
	err  error
}

// SimulationStore caches the simulation window for one signed-in client.
// The first Fetch loads it; later calls are no-ops. Concurrent loads share
// one request.
type SimulationStore struct {
	client *Client

	mu       sync.Mutex
	state    SimulationState
	inflight *flight
}

func NewSimulationStore(c *Client) *SimulationStore {
	return &SimulationStore{client: c}
}

// State returns a snapshot.
func (s *SimulationStore) State() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.StartDate = copyTime(st.StartDate)
	st.EndDate = copyTime(st.EndDate)
	return st
}

// Fetch loads the window once. It does nothing after a successful load.
func (s *SimulationStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Loaded {
		s.mu.Unlock()
		return nil
	}
	return s.loadLocked(ctx)
}

// Refresh reloads the window from the server even when already loaded.
func (s *SimulationStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	return s.loadLocked(ctx)
}

// loadLocked is entered with s.mu held and releases it.
func (s *SimulationStore) loadLocked(ctx context.Context) error {
	if f := s.inflight; f != nil {
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	s.inflight = f
	s.state.Loading = true
	s.mu.Unlock()

	var st simulationStatus
	err := s.client.Do(ctx, http.MethodGet, simulationPath, nil, nil, &st)

	s.mu.Lock()
	s.inflight = nil
	s.state.Loading = false
	if err != nil {
		s.state.Err = err.Error()
	} else {
		s.apply(st)
	}
	s.mu.Unlock()

	f.err = err
	close(f.done)
	return err
}

// Toggle asks the server to enable or disable simulation. On failure the
// error is recorded and the window is re-fetched so the state matches the
// server again.
func (s *SimulationStore) Toggle(ctx context.Context, active bool, start, end *time.Time) error {
	body := map[string]any{"is_simulation": active, "startDate_utc": nil, "endDate_utc": nil}
	if active {
		if start != nil {
			body["startDate_utc"] = *start
		}
		if end != nil {
			body["endDate_utc"] = *end
		}
	}

	var st simulationStatus
	err := s.client.Do(ctx, http.MethodPost, simulationPath, nil, body, &st)
	if err != nil {
		s.mu.Lock()
		s.state.Err = err.Error()
		s.mu.Unlock()
		if ferr := s.Refresh(ctx); ferr != nil {
			s.client.log.Warnw("sim_refetch_failed", "err", ferr)
		}
		s.mu.Lock()
		s.state.Err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.apply(st)
	s.mu.Unlock()
	return nil
}

// apply is called with s.mu held.
func (s *SimulationStore) apply(st simulationStatus) {
	s.state.IsSimulation = st.IsSimulation
	s.state.StartDate = s.local(st.StartDate)
	s.state.EndDate = s.local(st.EndDate)
	s.state.Loaded = true
	s.state.Err = ""
}

func (s *SimulationStore) local(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	l := t.In(s.client.loc)
	return &l
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
