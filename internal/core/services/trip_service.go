package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
)

type CreateTripInput struct {
	OwnerID     uuid.UUID
	Origin      string
	Destination string
	Details     string
	Capacity    int
	ScheduledAt time.Time
}

type UpdateTripInput struct {
	Origin      *string
	Destination *string
	Details     *string
}

// TripService owns the trip registry: creation, reads with derived seat
// counts, owner updates, owner cancellation with cascade, and manual
// completion ahead of the sweeper.
type TripService struct {
	trips         ports.TripRepository
	reservations  ports.ReservationRepository
	confirmations ports.ConfirmationRepository
	guard         ports.TripGuard
	sink          ports.EventSink
	clock         clock.Clock
}

func NewTripService(
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	confirmations ports.ConfirmationRepository,
	guard ports.TripGuard,
	sink ports.EventSink,
	clk clock.Clock,
) *TripService {
	return &TripService{
		trips:         trips,
		reservations:  reservations,
		confirmations: confirmations,
		guard:         guard,
		sink:          sink,
		clock:         clk,
	}
}

func (s *TripService) CreateTrip(ctx context.Context, in CreateTripInput) (*domain.Trip, error) {
	if in.Capacity <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	now := s.clock.Now()
	if !in.ScheduledAt.After(now) {
		return nil, domain.ErrScheduleInPast
	}

	trip := &domain.Trip{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		Details:     in.Details,
		Capacity:    in.Capacity,
		ScheduledAt: in.ScheduledAt.UTC(),
		Status:      domain.TripOpen,
		CreatedAt:   now,
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, id uuid.UUID) (*domain.TripWithSeats, error) {
	return s.trips.GetWithSeats(ctx, id)
}

func (s *TripService) ListTrips(ctx context.Context, filter ports.TripFilter) ([]domain.TripWithSeats, error) {
	return s.trips.List(ctx, filter)
}

func (s *TripService) UpdateTrip(ctx context.Context, id, owner uuid.UUID, in UpdateTripInput) (*domain.Trip, error) {
	var updated *domain.Trip
	err := s.guard.WithTrip(ctx, id, func(ctx context.Context, trip *domain.Trip) error {
		if trip.OwnerID != owner {
			return domain.ErrForbidden
		}
		if trip.IsTerminal() {
			return domain.ErrTripNotActive
		}
		if in.Origin != nil {
			trip.Origin = strings.TrimSpace(*in.Origin)
		}
		if in.Destination != nil {
			trip.Destination = strings.TrimSpace(*in.Destination)
		}
		if in.Details != nil {
			trip.Details = *in.Details
		}
		if err := s.trips.UpdateDetails(ctx, trip); err != nil {
			return err
		}
		updated = trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelTrip withdraws a trip before departure. Every active reservation on
// it is cancelled and each affected passenger gets a cancellation event.
func (s *TripService) CancelTrip(ctx context.Context, id, owner uuid.UUID) error {
	now := s.clock.Now()
	var events []domain.Event

	err := s.guard.WithTrip(ctx, id, func(ctx context.Context, trip *domain.Trip) error {
		if trip.OwnerID != owner {
			return domain.ErrForbidden
		}
		if trip.IsTerminal() {
			return domain.ErrTripNotActive
		}
		if !now.Before(trip.ScheduledAt) {
			return domain.ErrTooLate
		}
		evs, err := retireTrip(ctx, s.trips, s.reservations, s.confirmations, trip, domain.TripCancelled, domain.ReasonTripCancelled, now)
		if err != nil {
			return err
		}
		events = evs
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, events)
	return nil
}

// CompleteTrip lets the owner mark a trip done before the sweeper would.
func (s *TripService) CompleteTrip(ctx context.Context, id, owner uuid.UUID) error {
	now := s.clock.Now()
	var events []domain.Event

	err := s.guard.WithTrip(ctx, id, func(ctx context.Context, trip *domain.Trip) error {
		if trip.OwnerID != owner {
			return domain.ErrForbidden
		}
		if trip.IsTerminal() {
			return domain.ErrTripNotActive
		}
		evs, err := retireTrip(ctx, s.trips, s.reservations, s.confirmations, trip, domain.TripCompleted, domain.ReasonTripCompleted, now)
		if err != nil {
			return err
		}
		events = evs
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, events)
	return nil
}

func (s *TripService) emit(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		s.sink.Emit(ctx, ev)
	}
}
