package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
)

// TripFilter narrows List results. Zero values mean "no filter".
type TripFilter struct {
	Status      domain.TripStatus
	Origin      string
	Destination string
	OwnerID     uuid.UUID
}

type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	GetWithSeats(ctx context.Context, id uuid.UUID) (*domain.TripWithSeats, error)
	List(ctx context.Context, filter TripFilter) ([]domain.TripWithSeats, error)
	UpdateDetails(ctx context.Context, trip *domain.Trip) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error
	// ListDue returns open or full trips whose scheduled time is at or
	// before now, for the sweeper.
	ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type ReservationRepository interface {
	// Create inserts the reservation and its confirmation request in one
	// transaction. Returns domain.ErrDuplicateReservation when the
	// passenger already holds an active reservation on the trip.
	Create(ctx context.Context, rsv *domain.Reservation, conf *domain.ConfirmationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error
	// SumConfirmedSeats recomputes the confirmed seat total from the
	// ledger. Never cached; the live sum is the source of truth.
	SumConfirmedSeats(ctx context.Context, tripID uuid.UUID) (int, error)
	CountConfirmed(ctx context.Context, tripID uuid.UUID) (int, error)
	ListActiveByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Reservation, error)
}

type ConfirmationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfirmationRequest, error)
	// Resolve transitions the request from PENDING to the given terminal
	// status. Returns domain.ErrAlreadyResolved when it was no longer
	// pending, domain.ErrConfirmationNotFound when it does not exist.
	Resolve(ctx context.Context, id uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error
	// ResolveByReservation closes a still-pending request for the given
	// reservation, if any. A no-op when none is pending.
	ResolveByReservation(ctx context.Context, reservationID uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error
}

// TripGuard is the per-trip critical section. WithTrip locks the trip row,
// reloads it, and runs fn; repository calls made with fn's context join the
// same transaction, which commits only when fn returns nil. Guard scope is
// exactly one trip: operations on different trips never contend. Acquisition
// is bounded; contention surfaces as domain.ErrBusy.
type TripGuard interface {
	WithTrip(ctx context.Context, tripID uuid.UUID, fn func(ctx context.Context, trip *domain.Trip) error) error
}

// EventSink receives domain events for the external notifier. Emission is
// best effort and must not fail the business operation.
type EventSink interface {
	Emit(ctx context.Context, ev domain.Event)
}
