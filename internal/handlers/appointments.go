package handlers

import (
	"net/http"

	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// appointmentRequest is the body of POST /api/v1/appointments.
type appointmentRequest struct {
	MemberID   int64  `json:"member_id" binding:"required,gt=0"`
	EmployeeID int64  `json:"employee_id" binding:"required,gt=0"`
	StartTime  string `json:"starttime_utc" binding:"required,iso8601" example:"2025-01-15T02:00:00.000Z"`
	EndTime    string `json:"endtime_utc" binding:"required,iso8601" example:"2025-01-15T03:00:00.000Z"`
	Remarks    string `json:"remarks" binding:"max=500"`
}

// @Summary      Create appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body      appointmentRequest  true  "Appointment"
// @Success      201   {object}  models.Appointment
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/appointments [post]
// @Security     BearerAuth
func (h *Handler) createAppointment(c *gin.Context) {
	var req appointmentRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	start, _ := parseOptionalISO(&req.StartTime)
	end, _ := parseOptionalISO(&req.EndTime)

	a, err := h.services.Appointments.Create(c.Request.Context(), service.AppointmentParams{
		MemberID:   req.MemberID,
		EmployeeID: req.EmployeeID,
		StartTime:  *start,
		EndTime:    *end,
		Remarks:    req.Remarks,
	})
	if err != nil {
		h.respondError(c, "appointment_create_failed", err, "member_id", req.MemberID)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary      List appointments for a day
// @Description  The day is local to tz. Without date the session clock's today is used.
// @Tags         appointments
// @Produce      json
// @Param        date  query  string  false  "Local day (YYYY-MM-DD)"  example(2025-01-15)
// @Param        tz    query  string  false  "IANA timezone, default UTC"  example(Asia/Singapore)
// @Success      200   {object}  map[string]interface{}  "date, count, appointments"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/appointments [get]
// @Security     BearerAuth
func (h *Handler) listAppointments(c *gin.Context) {
	day, tz := c.Query("date"), c.Query("tz")
	list, err := h.services.Appointments.ForDay(c.Request.Context(), day, tz)
	if err != nil {
		h.respondError(c, "appointment_list_failed", err, "date", day, "tz", tz)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "count": len(list), "appointments": list})
}
