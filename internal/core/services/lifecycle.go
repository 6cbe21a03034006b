package services

import (
	"context"
	"time"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
)

// retireTrip moves a trip to a terminal status and cascades to its
// reservations: pending ones are cancelled and their confirmation requests
// rejected with the given reason; confirmed ones are completed when the trip
// completes and cancelled otherwise. Must run inside the per-trip guard.
// Returns the events to emit once the transaction commits.
func retireTrip(
	ctx context.Context,
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	confirmations ports.ConfirmationRepository,
	trip *domain.Trip,
	target domain.TripStatus,
	reason string,
	now time.Time,
) ([]domain.Event, error) {
	active, err := reservations.ListActiveByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(active)+1)
	for i := range active {
		rsv := &active[i]
		switch rsv.Status {
		case domain.ReservationPending:
			if err := reservations.UpdateStatus(ctx, rsv.ID, domain.ReservationCancelled); err != nil {
				return nil, err
			}
			if err := confirmations.ResolveByReservation(ctx, rsv.ID, domain.ConfirmationRejected, reason, now); err != nil {
				return nil, err
			}
			events = append(events, domain.Event{
				Type:          domain.EventReservationCancelled,
				TripID:        trip.ID,
				ReservationID: rsv.ID,
				OwnerID:       trip.OwnerID,
				PassengerID:   rsv.PassengerID,
				Reason:        reason,
				OccurredAt:    now,
			})
		case domain.ReservationConfirmed:
			next := domain.ReservationCancelled
			evType := domain.EventReservationCancelled
			if target == domain.TripCompleted {
				next = domain.ReservationCompleted
				evType = domain.EventReservationCompleted
			}
			if err := reservations.UpdateStatus(ctx, rsv.ID, next); err != nil {
				return nil, err
			}
			events = append(events, domain.Event{
				Type:          evType,
				TripID:        trip.ID,
				ReservationID: rsv.ID,
				OwnerID:       trip.OwnerID,
				PassengerID:   rsv.PassengerID,
				Reason:        reason,
				OccurredAt:    now,
			})
		}
	}

	old := trip.Status
	if err := trips.UpdateStatus(ctx, trip.ID, target); err != nil {
		return nil, err
	}
	trip.Status = target

	events = append(events, domain.Event{
		Type:       domain.EventTripStatusChanged,
		TripID:     trip.ID,
		OwnerID:    trip.OwnerID,
		OldStatus:  string(old),
		NewStatus:  string(target),
		Reason:     reason,
		OccurredAt: now,
	})
	return events, nil
}

func statusChangedEvent(trip *domain.Trip, old domain.TripStatus, now time.Time) domain.Event {
	return domain.Event{
		Type:       domain.EventTripStatusChanged,
		TripID:     trip.ID,
		OwnerID:    trip.OwnerID,
		OldStatus:  string(old),
		NewStatus:  string(trip.Status),
		OccurredAt: now,
	}
}
