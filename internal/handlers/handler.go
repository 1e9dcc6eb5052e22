package handlers

import (
	"net/http"

	"cleo_backend/internal/logger"
	"cleo_backend/internal/metrics"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	origins  []string
	limiter  *rateLimiter
}

// Option customises a Handler.
type Option func(*Handler)

// WithAllowedOrigins sets the CORS allow list. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) { h.origins = origins }
}

// WithRateLimit enables per-client rate limiting. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *Handler) {
		if rps > 0 {
			h.limiter = newRateLimiter(rps, burst)
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	registerValidators()
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware(), h.corsMiddleware)
	if h.limiter != nil {
		router.Use(h.limiter.middleware)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live simulation status; browsers pass the token as ?access_token=
	router.GET("/ws/simulation", h.userIdMiddleware, h.sessionMiddleware, h.wsSimulation)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware, h.sessionMiddleware, h.simulationMiddleware)
	{
		api.POST("/auth/sign-out", h.signOut)
		h.registerSessionRoutes(api)
		h.registerTimetableRoutes(api)
		h.registerAppointmentRoutes(api)
		h.registerVoucherRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	session := api.Group("/session")
	{
		// Body example: {"is_simulation":true,"startDate_utc":"2025-01-01T00:00:00.000Z","endDate_utc":null}
		session.GET("/sim", h.getSimulation)
		session.POST("/sim", h.toggleSimulation)
		session.GET("/date-range", h.getDateRange)
		session.POST("/date-range", h.setDateRange)
	}
}

func (h *Handler) registerTimetableRoutes(api *gin.RouterGroup) {
	timetables := api.Group("/timetables")
	{
		timetables.POST("", h.createTimetable)
		timetables.GET("/current-and-upcoming/:employeeId", h.currentAndUpcoming)
	}
}

func (h *Handler) registerAppointmentRoutes(api *gin.RouterGroup) {
	appointments := api.Group("/appointments")
	{
		appointments.POST("", h.createAppointment)
		appointments.GET("", h.listAppointments)
	}
}

func (h *Handler) registerVoucherRoutes(api *gin.RouterGroup) {
	vouchers := api.Group("/member-vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
