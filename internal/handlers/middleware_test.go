package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/secure", h.userIdMiddleware, h.sessionMiddleware, h.simulationMiddleware, func(c *gin.Context) {
		uid, _ := c.Get(ctxUserID)
		sess, ok := service.SessionFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": ok, "userId": uid, "sessionId": sess.ID, "active": sess.Simulation.IsActive})
	})
	return r
}

func TestUserIDMiddleware_Errors(t *testing.T) {
	type want struct {
		code   int
		errMsg string
	}
	cases := []struct {
		name   string
		header string
		want   want
	}{
		{
			name:   "missing header",
			header: "",
			want:   want{code: http.StatusUnauthorized, errMsg: "missing Authorization header"},
		},
		{
			name:   "invalid scheme",
			header: "Token abc",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "bearer without token",
			header: "Bearer",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "expired/invalid token",
			header: "Bearer expired",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid or expired token"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newAuthedService()
			if tc.name == "expired/invalid token" {
				s.Authorization.(*mockAuth).parseErr = errors.New("expired")
			}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.want.code {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want.code, w.Body.String())
			}

			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.want.errMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.want.errMsg)
			}
		})
	}
}

func TestMiddleware_SuccessCarriesSessionAndHeader(t *testing.T) {
	s := newAuthedService()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Sessions.(*mockSessions).session.Simulation = models.SimulationWindow{IsActive: true, StartDate: &start}
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := w.Header().Get(headerSimulationMode); got != "true" {
		t.Fatalf("%s: got %q, want true", headerSimulationMode, got)
	}

	var resp struct {
		OK        bool   `json:"ok"`
		UserID    int    `json:"userId"`
		SessionID string `json:"sessionId"`
		Active    bool   `json:"active"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || resp.UserID != 7 || resp.SessionID != "sid-1" || !resp.Active {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := s.Authorization.(*mockAuth).lastParseToken; got != testToken {
		t.Fatalf("ParseToken got %q, want %q", got, testToken)
	}
}

func TestSessionMiddleware_MissingSessionIs401(t *testing.T) {
	s := newAuthedService()
	s.Sessions.(*mockSessions).getErr = service.ErrSessionNotFound
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401; body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Code != "session_not_found" {
		t.Fatalf("code: got %q", out.Code)
	}
}

func TestSessionMiddleware_ForeignSessionIs401(t *testing.T) {
	s := newAuthedService()
	s.Sessions.(*mockSessions).session.UserID = 99
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
}

func TestSimulationMiddleware_ReusesLoadedSession(t *testing.T) {
	s := newAuthedService()
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Sessions.(*mockSessions).session.Simulation = models.SimulationWindow{IsActive: true, StartDate: &start}
	s.Simulation.(*mockSimulation).windowErr = errors.New("must not be called")
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(headerSimulationMode); got != "true" {
		t.Fatalf("%s: got %q, want true", headerSimulationMode, got)
	}
	if n := s.Sessions.(*mockSessions).getCalls; n != 1 {
		t.Fatalf("session loaded %d times, want 1", n)
	}
}

func TestSimulationMiddleware_BrokenWindowServesUnsimulated(t *testing.T) {
	s := newAuthedService()
	s.Sessions.(*mockSessions).session.Simulation = models.SimulationWindow{IsActive: true}
	r := newMiddlewareOnlyRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(headerSimulationMode); got != "false" {
		t.Fatalf("%s: got %q, want false", headerSimulationMode, got)
	}
	var resp struct {
		Active bool `json:"active"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Active {
		t.Fatal("context session must be inactive")
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{}, nil, WithAllowedOrigins("http://localhost:5173"))
	r := h.InitRoutes()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/session/sim", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status: got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin: got %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin for foreign origin: %q", got)
	}
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{}, nil, WithRateLimit(0.001, 2))
	r := h.InitRoutes()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
