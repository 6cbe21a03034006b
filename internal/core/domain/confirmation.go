package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConfirmationStatus string

const (
	ConfirmationPending  ConfirmationStatus = "PENDING"
	ConfirmationAccepted ConfirmationStatus = "ACCEPTED"
	ConfirmationRejected ConfirmationStatus = "REJECTED"
)

// Resolution reasons recorded when a confirmation request leaves PENDING.
const (
	ReasonOwnerRejected      = "owner_rejected"
	ReasonCapacityExceeded   = "capacity_exceeded"
	ReasonPassengerCancelled = "passenger_cancelled"
	ReasonOwnerCancelled     = "owner_cancelled"
	ReasonTripCancelled      = "trip_cancelled"
	ReasonTripCompleted      = "trip_completed"
	ReasonTripExpired        = "trip_expired"
)

// ConfirmationRequest is the owner-facing decision record created together
// with a reservation. It is resolved exactly once; the accept/reject action
// of the trip owner is the only writer of its terminal status.
type ConfirmationRequest struct {
	ID             uuid.UUID
	TripID         uuid.UUID
	ReservationID  uuid.UUID
	OwnerID        uuid.UUID
	PassengerID    uuid.UUID
	Status         ConfirmationStatus
	ResolvedReason string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

func (c *ConfirmationRequest) IsResolved() bool {
	return c.Status != ConfirmationPending
}
