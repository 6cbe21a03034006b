package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Reservation is a passenger's request for Seats seats on a trip. The seat
// count is fixed at creation and is never partially fulfilled.
type Reservation struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	PassengerID uuid.UUID
	Seats       int
	Status      ReservationStatus
	CreatedAt   time.Time
}

// IsActive reports whether the reservation still occupies the one active
// slot a passenger gets per trip.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}
