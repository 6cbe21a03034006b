package domain

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripOpen      TripStatus = "OPEN"
	TripFull      TripStatus = "FULL"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
	TripExpired   TripStatus = "EXPIRED"
)

// Trip is a published ride with a fixed number of seats. Confirmed
// reservations consume seats; the confirmed total never exceeds Capacity.
type Trip struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Origin      string
	Destination string
	Details     string
	Capacity    int
	ScheduledAt time.Time
	Status      TripStatus
	CreatedAt   time.Time
}

// IsTerminal reports whether the trip can no longer accept any mutation.
func (t *Trip) IsTerminal() bool {
	switch t.Status {
	case TripCompleted, TripCancelled, TripExpired:
		return true
	}
	return false
}

// AcceptsReservations reports whether new reservation requests are allowed.
func (t *Trip) AcceptsReservations() bool {
	return t.Status == TripOpen
}

// TripWithSeats is a trip read model carrying the live confirmed-seat sum.
type TripWithSeats struct {
	Trip
	ConfirmedSeats int
}

func (t *TripWithSeats) RemainingSeats() int {
	remaining := t.Capacity - t.ConfirmedSeats
	if remaining < 0 {
		return 0
	}
	return remaining
}
