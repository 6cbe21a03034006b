package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/obs"
)

const defaultCancelLeadTime = 2 * time.Hour

type CreateReservationInput struct {
	TripID      uuid.UUID
	PassengerID uuid.UUID
	Seats       int
}

type CreateReservationResult struct {
	Reservation    domain.Reservation
	ConfirmationID uuid.UUID
}

// ReservationService owns the reservation ledger: passenger-created pending
// reservations and the two cancellation paths. Confirmation is the
// ConfirmationService's job.
type ReservationService struct {
	trips          ports.TripRepository
	reservations   ports.ReservationRepository
	confirmations  ports.ConfirmationRepository
	guard          ports.TripGuard
	allocator      *Allocator
	sink           ports.EventSink
	clock          clock.Clock
	metrics        *obs.Metrics
	cancelLeadTime time.Duration
}

type ReservationServiceOption func(*ReservationService)

// WithCancelLeadTime overrides how long before departure a passenger may
// still cancel.
func WithCancelLeadTime(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d >= 0 {
			s.cancelLeadTime = d
		}
	}
}

func NewReservationService(
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	confirmations ports.ConfirmationRepository,
	guard ports.TripGuard,
	allocator *Allocator,
	sink ports.EventSink,
	clk clock.Clock,
	metrics *obs.Metrics,
	opts ...ReservationServiceOption,
) *ReservationService {
	svc := &ReservationService{
		trips:          trips,
		reservations:   reservations,
		confirmations:  confirmations,
		guard:          guard,
		allocator:      allocator,
		sink:           sink,
		clock:          clk,
		metrics:        metrics,
		cancelLeadTime: defaultCancelLeadTime,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateReservation files a pending reservation and, atomically with it, the
// owner-facing confirmation request. The capacity check here is advisory:
// it rejects requests that cannot fit right now, but the authoritative check
// happens at confirmation time under the per-trip guard.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*CreateReservationResult, error) {
	if in.Seats < 1 {
		return nil, domain.ErrInvalidSeats
	}

	trip, err := s.trips.GetByID(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if trip.OwnerID == in.PassengerID {
		return nil, domain.ErrOwnTrip
	}
	if !trip.AcceptsReservations() {
		return nil, domain.ErrCapacityUnavailable
	}

	confirmed, err := s.reservations.SumConfirmedSeats(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if confirmed+in.Seats > trip.Capacity {
		return nil, domain.ErrCapacityUnavailable
	}

	now := s.clock.Now()
	rsv := domain.Reservation{
		ID:          uuid.New(),
		TripID:      trip.ID,
		PassengerID: in.PassengerID,
		Seats:       in.Seats,
		Status:      domain.ReservationPending,
		CreatedAt:   now,
	}
	conf := domain.ConfirmationRequest{
		ID:            uuid.New(),
		TripID:        trip.ID,
		ReservationID: rsv.ID,
		OwnerID:       trip.OwnerID,
		PassengerID:   in.PassengerID,
		Status:        domain.ConfirmationPending,
		CreatedAt:     now,
	}

	if err := s.reservations.Create(ctx, &rsv, &conf); err != nil {
		return nil, err
	}

	s.metrics.ReservationsCreated.Inc()
	s.sink.Emit(ctx, domain.Event{
		Type:          domain.EventReservationCreated,
		TripID:        trip.ID,
		ReservationID: rsv.ID,
		OwnerID:       trip.OwnerID,
		PassengerID:   in.PassengerID,
		OccurredAt:    now,
	})

	return &CreateReservationResult{Reservation: rsv, ConfirmationID: conf.ID}, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id, caller uuid.UUID) (*domain.Reservation, error) {
	rsv, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rsv.PassengerID == caller {
		return rsv, nil
	}
	trip, err := s.trips.GetByID(ctx, rsv.TripID)
	if err != nil {
		return nil, err
	}
	if trip.OwnerID != caller {
		return nil, domain.ErrForbidden
	}
	return rsv, nil
}

// CancelByPassenger cancels the caller's own reservation. Allowed strictly
// before scheduled_at minus the lead time; at or past the cutoff it fails
// with ErrTooLate.
func (s *ReservationService) CancelByPassenger(ctx context.Context, id, passenger uuid.UUID) error {
	rsv, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rsv.PassengerID != passenger {
		return domain.ErrForbidden
	}

	return s.cancel(ctx, rsv, domain.ReasonPassengerCancelled, true)
}

// CancelByOwner cancels any active reservation on the owner's trip, with no
// time restriction.
func (s *ReservationService) CancelByOwner(ctx context.Context, id, owner uuid.UUID) error {
	rsv, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}

	trip, err := s.trips.GetByID(ctx, rsv.TripID)
	if err != nil {
		return err
	}
	if trip.OwnerID != owner {
		return domain.ErrForbidden
	}

	return s.cancel(ctx, rsv, domain.ReasonOwnerCancelled, false)
}

func (s *ReservationService) cancel(ctx context.Context, rsv *domain.Reservation, reason string, enforceCutoff bool) error {
	now := s.clock.Now()
	var events []domain.Event

	err := s.guard.WithTrip(ctx, rsv.TripID, func(ctx context.Context, trip *domain.Trip) error {
		// Reload under the guard; the status may have moved since the
		// unguarded read.
		current, err := s.reservations.GetByID(ctx, rsv.ID)
		if err != nil {
			return err
		}
		if !current.IsActive() {
			return domain.ErrReservationNotActive
		}
		if enforceCutoff && !now.Before(trip.ScheduledAt.Add(-s.cancelLeadTime)) {
			return domain.ErrTooLate
		}

		if err := s.reservations.UpdateStatus(ctx, current.ID, domain.ReservationCancelled); err != nil {
			return err
		}
		if err := s.confirmations.ResolveByReservation(ctx, current.ID, domain.ConfirmationRejected, reason, now); err != nil {
			return err
		}

		events = append(events, domain.Event{
			Type:          domain.EventReservationCancelled,
			TripID:        trip.ID,
			ReservationID: current.ID,
			OwnerID:       trip.OwnerID,
			PassengerID:   current.PassengerID,
			Reason:        reason,
			OccurredAt:    now,
		})

		// A confirmed reservation frees seats: re-evaluate the aggregate
		// inside the same critical section.
		if current.Status == domain.ReservationConfirmed {
			old := trip.Status
			reopened, err := s.allocator.Release(ctx, trip)
			if err != nil {
				return err
			}
			if reopened {
				events = append(events, statusChangedEvent(trip, old, now))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		s.sink.Emit(ctx, ev)
	}
	return nil
}
