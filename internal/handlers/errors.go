package handlers

import (
	"net/http"

	"cleo_backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	errInternal        = "internal server error"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, code, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.AbortWithStatusJSON(httpCode, gin.H{"error": userMsg, "code": code})
}

// respondError maps err onto its apperr status and code. Errors without
// an apperr in the chain answer 500 with a generic message.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	h.logAndJSONError(c, apperr.Status(err), apperr.Code(err), apperr.Message(err, errInternal), logKey, err, kv...)
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, apperr.ErrValidation.Code, errInvalidBodyPref+err.Error(), "bad_request_body", err,
			"path", c.FullPath())
		return false
	}
	return true
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.ErrBadRequest.Code})
}
