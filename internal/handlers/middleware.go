package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"cleo_backend/internal/metrics"
	"cleo_backend/internal/models"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	ctxUserID    = "userId"
	ctxSessionID = "sessionId"
	ctxSession   = "session"

	headerSimulationMode = "X-Simulation-Mode"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	token, msg := bearerToken(c)
	if msg != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthorized"})
		return
	}

	claims, err := h.services.Authorization.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
			"code":  "unauthorized",
		})
		return
	}

	// store in Gin context
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxSessionID, claims.SessionID)
	c.Next()
}

// bearerToken extracts the access token. WebSocket upgrades may carry it in
// the access_token query parameter instead of the header.
func bearerToken(c *gin.Context) (token, errMsg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if t := c.Query("access_token"); t != "" {
				return t, ""
			}
		}
		return "", "missing Authorization header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "invalid Authorization header format"
	}
	return parts[1], ""
}

// sessionMiddleware loads the session named by the token. A missing or
// expired session ends the request with 401.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	sid := c.GetString(ctxSessionID)
	sess, err := h.services.Sessions.Get(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, "session_load_failed", err, "session_id", sid)
		return
	}
	if uid, ok := c.Get(ctxUserID); ok && uid.(int) != sess.UserID {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session does not belong to token", "code": "unauthorized"})
		return
	}
	c.Set(ctxSession, sess)
	c.Next()
}

// simulationMiddleware reads the simulation window of the session loaded by
// sessionMiddleware and stores the session in the request context so
// services read the simulated clock. A missing session or an active window
// without a start serves the request unsimulated.
func (h *Handler) simulationMiddleware(c *gin.Context) {
	sess, _ := c.Get(ctxSession)
	s, ok := sess.(models.Session)

	w := s.Simulation
	if !ok || (w.IsActive && w.StartDate == nil) {
		if h.log != nil {
			h.log.Warnw("sim_resolve_failed", "session_id", c.GetString(ctxSessionID), "session_loaded", ok)
		}
		w = models.SimulationWindow{}
	}
	s.Simulation = w

	c.Request = c.Request.WithContext(service.WithSession(c.Request.Context(), s))
	c.Header(headerSimulationMode, strconv.FormatBool(w.IsActive))
	if w.IsActive {
		metrics.RecordSimulatedRequest()
	}
	c.Next()
}

// corsMiddleware answers preflight requests and echoes allowed origins.
func (h *Handler) corsMiddleware(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin != "" && h.originAllowed(origin) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Expose-Headers", headerSimulationMode)
		c.Header("Vary", "Origin")
	}
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (h *Handler) originAllowed(origin string) bool {
	for _, o := range h.origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
