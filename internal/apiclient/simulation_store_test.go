package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSimServer keeps one window in memory and serves /api/v1/session/sim.
type fakeSimServer struct {
	mu       sync.Mutex
	status   map[string]any
	gets     atomic.Int32
	failPost bool
	gate     chan struct{}
}

func newFakeSimServer() *fakeSimServer {
	return &fakeSimServer{status: map[string]any{"is_simulation": false, "startDate_utc": nil, "endDate_utc": nil}}
}

func (f *fakeSimServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f.gets.Add(1)
		if f.gate != nil {
			<-f.gate
		}
	case http.MethodPost:
		if f.failPost {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.status = body
		if body["is_simulation"] != true {
			f.status = map[string]any{"is_simulation": false, "startDate_utc": nil, "endDate_utc": nil}
		}
		f.mu.Unlock()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(f.status)
}

func TestSimulationStore_EnableThenDisable(t *testing.T) {
	srv := newFakeSimServer()
	store := NewSimulationStore(newTestClient(t, srv))
	ctx := context.Background()

	sg, _ := time.LoadLocation(testTZ)
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, sg)
	end := time.Date(2025, 2, 1, 7, 59, 59, 0, sg)
	require.NoError(t, store.Toggle(ctx, true, &start, &end))

	srv.mu.Lock()
	assert.Equal(t, "2025-01-01T00:00:00.000Z", srv.status["startDate_utc"])
	assert.Equal(t, "2025-01-31T23:59:59.000Z", srv.status["endDate_utc"])
	srv.mu.Unlock()

	st := store.State()
	assert.True(t, st.IsSimulation)
	require.NotNil(t, st.StartDate)
	assert.True(t, st.StartDate.Equal(start))
	assert.Equal(t, testTZ, st.StartDate.Location().String())

	require.NoError(t, store.Toggle(ctx, false, &start, nil))
	st = store.State()
	assert.False(t, st.IsSimulation)
	assert.Nil(t, st.StartDate)
	assert.Nil(t, st.EndDate)
}

func TestSimulationStore_ConcurrentFirstFetchSharesOneRequest(t *testing.T) {
	srv := newFakeSimServer()
	srv.gate = make(chan struct{})
	store := NewSimulationStore(newTestClient(t, srv))

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Fetch(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return srv.gets.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, store.State().Loading)
	close(srv.gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), srv.gets.Load())
	assert.True(t, store.State().Loaded)

	require.NoError(t, store.Fetch(context.Background()))
	assert.Equal(t, int32(1), srv.gets.Load(), "fetch after load is a no-op")
}

func TestSimulationStore_ToggleFailureRefetches(t *testing.T) {
	srv := newFakeSimServer()
	store := NewSimulationStore(newTestClient(t, srv))
	ctx := context.Background()
	require.NoError(t, store.Fetch(ctx))

	srv.failPost = true
	start := time.Now()
	err := store.Toggle(ctx, true, &start, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, int32(2), srv.gets.Load(), "compensating fetch expected")

	st := store.State()
	assert.False(t, st.IsSimulation, "state follows the server, not the failed request")
	assert.NotEmpty(t, st.Err)
}
