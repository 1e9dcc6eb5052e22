package service

import (
	"errors"
	"net/http"

	"cleo_backend/internal/apperr"
)

// Domain errors. Each maps onto an apperr code so handlers can answer with
// the right status.
var (
	ErrSessionNotFound = apperr.New("session_not_found", http.StatusUnauthorized, "session expired or not found")
	ErrInvalidWindow   = apperr.New("invalid_simulation_window", http.StatusBadRequest, "")
	ErrInvalidRange    = apperr.New("invalid_date_range", http.StatusBadRequest, "")
	ErrNoTimetable     = apperr.New("timetable_not_found", http.StatusNotFound, "no current or upcoming timetable")
	ErrInvalidInput    = apperr.New("invalid_input", http.StatusBadRequest, "")
)

// Auth errors are plain sentinels; handlers match on them.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
)

func invalid(base *apperr.Error, msg string) error {
	return apperr.WithMessage(base, msg)
}
