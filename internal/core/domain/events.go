package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationRejected  EventType = "reservation.rejected"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationCompleted EventType = "reservation.completed"
	EventTripStatusChanged    EventType = "trip.status_changed"
)

// Event is the unit handed to the external notifier. The core only emits;
// delivery (push, sockets, email) happens elsewhere.
type Event struct {
	Type          EventType
	TripID        uuid.UUID
	ReservationID uuid.UUID
	OwnerID       uuid.UUID
	PassengerID   uuid.UUID
	OldStatus     string
	NewStatus     string
	Reason        string
	OccurredAt    time.Time
}
