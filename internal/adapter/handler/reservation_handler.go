package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/services"
)

// ReservationAPI is the slice of ReservationService the handler needs.
type ReservationAPI interface {
	CreateReservation(ctx context.Context, in services.CreateReservationInput) (*services.CreateReservationResult, error)
	GetReservation(ctx context.Context, id, caller uuid.UUID) (*domain.Reservation, error)
	CancelByPassenger(ctx context.Context, id, passenger uuid.UUID) error
	CancelByOwner(ctx context.Context, id, owner uuid.UUID) error
}

type ReservationHandler struct {
	svc ReservationAPI
}

func NewReservationHandler(svc ReservationAPI) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

type createReservationRequest struct {
	Seats int `json:"seats"`
}

type reservationResponse struct {
	ID             string    `json:"id"`
	TripID         string    `json:"trip_id"`
	PassengerID    string    `json:"passenger_id"`
	Seats          int       `json:"seats"`
	Status         string    `json:"status"`
	ConfirmationID string    `json:"confirmation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	passenger, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	tripID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid trip id")
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid json body")
		return
	}

	result, err := h.svc.CreateReservation(r.Context(), services.CreateReservationInput{
		TripID:      tripID,
		PassengerID: passenger,
		Seats:       req.Seats,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rsv := result.Reservation
	writeJSON(w, http.StatusCreated, reservationResponse{
		ID:             rsv.ID.String(),
		TripID:         rsv.TripID.String(),
		PassengerID:    rsv.PassengerID.String(),
		Seats:          rsv.Seats,
		Status:         string(rsv.Status),
		ConfirmationID: result.ConfirmationID.String(),
		CreatedAt:      rsv.CreatedAt,
	})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid reservation id")
		return
	}

	rsv, err := h.svc.GetReservation(r.Context(), id, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationResponse{
		ID:          rsv.ID.String(),
		TripID:      rsv.TripID.String(),
		PassengerID: rsv.PassengerID.String(),
		Seats:       rsv.Seats,
		Status:      string(rsv.Status),
		CreatedAt:   rsv.CreatedAt,
	})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	passenger, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid reservation id")
		return
	}

	if err := h.svc.CancelByPassenger(r.Context(), id, passenger); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.ReservationCancelled)})
}

func (h *ReservationHandler) CancelByOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid reservation id")
		return
	}

	if err := h.svc.CancelByOwner(r.Context(), id, owner); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.ReservationCancelled)})
}
