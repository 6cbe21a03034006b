package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/core/services"
)

// TripAPI is the slice of TripService the handler needs.
type TripAPI interface {
	CreateTrip(ctx context.Context, in services.CreateTripInput) (*domain.Trip, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*domain.TripWithSeats, error)
	ListTrips(ctx context.Context, filter ports.TripFilter) ([]domain.TripWithSeats, error)
	UpdateTrip(ctx context.Context, id, owner uuid.UUID, in services.UpdateTripInput) (*domain.Trip, error)
	CancelTrip(ctx context.Context, id, owner uuid.UUID) error
	CompleteTrip(ctx context.Context, id, owner uuid.UUID) error
}

type TripHandler struct {
	svc TripAPI
}

func NewTripHandler(svc TripAPI) *TripHandler {
	return &TripHandler{svc: svc}
}

type createTripRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Details     string    `json:"details"`
	Capacity    int       `json:"capacity"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type tripResponse struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Details        string    `json:"details,omitempty"`
	Capacity       int       `json:"capacity"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         string    `json:"status"`
	ConfirmedSeats *int      `json:"confirmed_seats,omitempty"`
	RemainingSeats *int      `json:"remaining_seats,omitempty"`
}

func tripToResponse(t *domain.Trip) tripResponse {
	return tripResponse{
		ID:          t.ID.String(),
		OwnerID:     t.OwnerID.String(),
		Origin:      t.Origin,
		Destination: t.Destination,
		Details:     t.Details,
		Capacity:    t.Capacity,
		ScheduledAt: t.ScheduledAt,
		Status:      string(t.Status),
	}
}

func tripWithSeatsToResponse(t *domain.TripWithSeats) tripResponse {
	resp := tripToResponse(&t.Trip)
	confirmed := t.ConfirmedSeats
	remaining := t.RemainingSeats()
	resp.ConfirmedSeats = &confirmed
	resp.RemainingSeats = &remaining
	return resp
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid json body")
		return
	}

	trip, err := h.svc.CreateTrip(r.Context(), services.CreateTripInput{
		OwnerID:     owner,
		Origin:      req.Origin,
		Destination: req.Destination,
		Details:     req.Details,
		Capacity:    req.Capacity,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid trip id")
		return
	}

	trip, err := h.svc.GetTrip(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripWithSeatsToResponse(trip))
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ports.TripFilter{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.TripStatus(status)
	} else {
		filter.Status = domain.TripOpen
	}

	trips, err := h.svc.ListTrips(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]tripResponse, 0, len(trips))
	for i := range trips {
		resp = append(resp, tripWithSeatsToResponse(&trips[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateTripRequest struct {
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	Details     *string `json:"details"`
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid trip id")
		return
	}

	var req updateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid json body")
		return
	}

	trip, err := h.svc.UpdateTrip(r.Context(), id, owner, services.UpdateTripInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		Details:     req.Details,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid trip id")
		return
	}

	if err := h.svc.CancelTrip(r.Context(), id, owner); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.TripCancelled)})
}

func (h *TripHandler) Complete(w http.ResponseWriter, r *http.Request) {
	owner, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "invalid trip id")
		return
	}

	if err := h.svc.CompleteTrip(r.Context(), id, owner); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.TripCompleted)})
}
