package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errEmployeeIDInvalid  = "employeeId must be a positive integer"
	errCurrentDateInvalid = "currentDate_utc must be an ISO-8601 timestamp"
)

// timetableRequest is the body of POST /api/v1/timetables.
type timetableRequest struct {
	EmployeeID     int64   `json:"employee_id" binding:"required,gt=0"`
	RestDayNumber  int     `json:"rest_day_number" binding:"required,min=1,max=7" example:"7"`
	EffectiveStart string  `json:"effective_startdate_utc" binding:"required,iso8601" example:"2025-01-01T00:00:00.000Z"`
	EffectiveEnd   *string `json:"effective_enddate_utc" binding:"omitempty,iso8601"`
}

// @Summary      Create employee timetable
// @Tags         timetables
// @Accept       json
// @Produce      json
// @Param        body  body      timetableRequest  true  "Timetable"
// @Success      201   {object}  models.Timetable
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/timetables [post]
// @Security     BearerAuth
func (h *Handler) createTimetable(c *gin.Context) {
	var req timetableRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	start, _ := parseOptionalISO(&req.EffectiveStart)
	end, _ := parseOptionalISO(req.EffectiveEnd)

	tt, err := h.services.Timetables.Create(c.Request.Context(), service.TimetableParams{
		EmployeeID:     req.EmployeeID,
		RestDayNumber:  req.RestDayNumber,
		EffectiveStart: *start,
		EffectiveEnd:   end,
	})
	if err != nil {
		h.respondError(c, "timetable_create_failed", err, "employee_id", req.EmployeeID)
		return
	}
	c.JSON(http.StatusCreated, tt)
}

// @Summary      Current and upcoming timetables
// @Description  "Now" is currentDate_utc when given, otherwise the session clock (simulated when active).
// @Tags         timetables
// @Produce      json
// @Param        employeeId       path   int     true   "Employee ID"
// @Param        currentDate_utc  query  string  false  "Reference instant (ISO-8601)"
// @Success      200  {object}  models.CurrentAndUpcoming
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/timetables/current-and-upcoming/{employeeId} [get]
// @Security     BearerAuth
func (h *Handler) currentAndUpcoming(c *gin.Context) {
	employeeID, err := strconv.ParseInt(c.Param("employeeId"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.badRequest(c, errEmployeeIDInvalid)
		return
	}

	var at *time.Time
	if qs := c.Query("currentDate_utc"); qs != "" {
		if at, err = parseOptionalISO(&qs); err != nil {
			h.badRequest(c, errCurrentDateInvalid)
			return
		}
	}

	res, err := h.services.Timetables.CurrentAndUpcoming(c.Request.Context(), employeeID, at)
	if err != nil {
		h.respondError(c, "timetable_lookup_failed", err, "employee_id", employeeID)
		return
	}
	c.JSON(http.StatusOK, res)
}
