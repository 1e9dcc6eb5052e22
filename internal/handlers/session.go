package handlers

import (
	"net/http"
	"strconv"

	"cleo_backend/internal/metrics"
	"cleo_backend/internal/models"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// simulationRequest toggles the session's simulation window. Bounds are
// ignored when is_simulation is false.
type simulationRequest struct {
	IsSimulation *bool   `json:"is_simulation" binding:"required"`
	StartDate    *string `json:"startDate_utc" example:"2025-01-01T00:00:00.000Z"`
	EndDate      *string `json:"endDate_utc" example:"2025-01-31T23:59:59.000Z"`
}

// dateRangeRequest replaces the session's reporting period. Null clears a bound.
type dateRangeRequest struct {
	StartDate *string `json:"start_date_utc" binding:"omitempty,iso8601"`
	EndDate   *string `json:"end_date_utc" binding:"omitempty,iso8601"`
}

// @Summary      Get simulation state
// @Tags         session
// @Produce      json
// @Success      200  {object}  models.SimulationStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/sim [get]
// @Security     BearerAuth
func (h *Handler) getSimulation(c *gin.Context) {
	sid := c.GetString(ctxSessionID)
	w, err := h.services.Simulation.Window(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, "sim_get_failed", err, "session_id", sid)
		return
	}
	c.JSON(http.StatusOK, w.Status())
}

// @Summary      Toggle simulation
// @Description  Enabling requires startDate_utc; endDate_utc must not precede it.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      simulationRequest  true  "Simulation window"
// @Success      200   {object}  models.SimulationStatus
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/sim [post]
// @Security     BearerAuth
func (h *Handler) toggleSimulation(c *gin.Context) {
	var req simulationRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	p := service.ToggleParams{IsSimulation: *req.IsSimulation}
	if p.IsSimulation {
		var err error
		if p.StartDate, err = parseOptionalISO(req.StartDate); err != nil {
			h.badRequest(c, "invalid startDate_utc: "+err.Error())
			return
		}
		if p.EndDate, err = parseOptionalISO(req.EndDate); err != nil {
			h.badRequest(c, "invalid endDate_utc: "+err.Error())
			return
		}
	}

	sid := c.GetString(ctxSessionID)
	w, err := h.services.Simulation.Toggle(c.Request.Context(), sid, p)
	metrics.RecordSimulationToggle(p.IsSimulation, err)
	if err != nil {
		h.respondError(c, "sim_toggle_failed", err, "session_id", sid)
		return
	}
	c.Header(headerSimulationMode, strconv.FormatBool(w.IsActive))
	c.JSON(http.StatusOK, w.Status())
}

// @Summary      Get date range
// @Tags         session
// @Produce      json
// @Success      200  {object}  models.DateRangeStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/date-range [get]
// @Security     BearerAuth
func (h *Handler) getDateRange(c *gin.Context) {
	sid := c.GetString(ctxSessionID)
	sess, err := h.services.Sessions.Get(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, "date_range_get_failed", err, "session_id", sid)
		return
	}
	c.JSON(http.StatusOK, sess.DateRange.Status())
}

// @Summary      Set date range
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      dateRangeRequest  true  "Date range"
// @Success      200   {object}  models.DateRangeStatus
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/session/date-range [post]
// @Security     BearerAuth
func (h *Handler) setDateRange(c *gin.Context) {
	var req dateRangeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	start, _ := parseOptionalISO(req.StartDate)
	end, _ := parseOptionalISO(req.EndDate)

	sid := c.GetString(ctxSessionID)
	r, err := h.services.Sessions.SetDateRange(c.Request.Context(), sid, models.DateRange{Start: start, End: end})
	if err != nil {
		h.respondError(c, "date_range_set_failed", err, "session_id", sid)
		return
	}
	c.JSON(http.StatusOK, r.Status())
}

