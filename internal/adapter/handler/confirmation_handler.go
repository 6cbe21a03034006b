package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/services"
)

// ConfirmationAPI is the slice of ConfirmationService the handler needs.
type ConfirmationAPI interface {
	Respond(ctx context.Context, confirmationID, owner uuid.UUID, action services.ConfirmationAction) (*services.RespondResult, error)
}

type ConfirmationHandler struct {
	svc ConfirmationAPI
}

func NewConfirmationHandler(svc ConfirmationAPI) *ConfirmationHandler {
	return &ConfirmationHandler{svc: svc}
}

type respondRequest struct {
	Action string `json:"action"`
}

type respondResponse struct {
	Outcome           string `json:"outcome"`
	ReservationID     string `json:"reservation_id"`
	ReservationStatus string `json:"reservation_status"`
	TripStatus        string `json:"trip_status"`
	Code              string `json:"code,omitempty"`
}

func (h *ConfirmationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid confirmation id")
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid json body")
		return
	}

	result, err := h.svc.Respond(r.Context(), id, owner, services.ConfirmationAction(req.Action))
	if err != nil {
		// A request resolved earlier still reports its terminal outcome so
		// a retried respond can compare and treat a match as success.
		if errors.Is(err, domain.ErrAlreadyResolved) && result != nil {
			writeJSON(w, http.StatusConflict, resultToResponse(result, codeAlreadyResolved))
			return
		}
		writeDomainError(w, err)
		return
	}

	// Losing the capacity race is an expected business outcome; it commits
	// the rejection and surfaces as a 409 the passenger's client explains.
	if result.Outcome == services.OutcomeCapacityExceeded {
		writeJSON(w, http.StatusConflict, resultToResponse(result, codeCapacityExceeded))
		return
	}

	writeJSON(w, http.StatusOK, resultToResponse(result, ""))
}

func resultToResponse(result *services.RespondResult, code string) respondResponse {
	return respondResponse{
		Outcome:           string(result.Outcome),
		ReservationID:     result.Reservation.ID.String(),
		ReservationStatus: string(result.Reservation.Status),
		TripStatus:        string(result.TripStatus),
		Code:              code,
	}
}
