package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farhn21/tripshare/internal/core/domain"
)

const (
	codeValidationError     = "validation_error"
	codeForbidden           = "forbidden"
	codeNotFound            = "not_found"
	codeDuplicateActive     = "duplicate_reservation"
	codeCapacityUnavailable = "capacity_unavailable"
	codeCapacityExceeded    = "capacity_exceeded"
	codeAlreadyResolved     = "already_resolved"
	codeNotActive           = "not_active"
	codeTooLate             = "too_late"
	codeBusy                = "busy"
	codeUnauthorized        = "unauthorized"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps the error taxonomy onto the HTTP surface. Busy is
// the only class a client should retry automatically.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidSeats),
		errors.Is(err, domain.ErrScheduleInPast),
		errors.Is(err, domain.ErrInvalidAction):
		writeError(w, http.StatusBadRequest, codeValidationError, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrOwnTrip):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrTripNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrConfirmationNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateReservation):
		writeError(w, http.StatusConflict, codeDuplicateActive, err.Error())
	case errors.Is(err, domain.ErrCapacityUnavailable):
		writeError(w, http.StatusConflict, codeCapacityUnavailable, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, codeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, codeAlreadyResolved, err.Error())
	case errors.Is(err, domain.ErrReservationNotActive), errors.Is(err, domain.ErrTripNotActive):
		writeError(w, http.StatusConflict, codeNotActive, err.Error())
	case errors.Is(err, domain.ErrTooLate):
		writeError(w, http.StatusConflict, codeTooLate, err.Error())
	case errors.Is(err, domain.ErrBusy):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, codeBusy, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
