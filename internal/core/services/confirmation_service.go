package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/obs"
)

type ConfirmationAction string

const (
	ActionAccept ConfirmationAction = "accept"
	ActionReject ConfirmationAction = "reject"
)

type RespondOutcome string

const (
	// OutcomeConfirmed: the seats were committed.
	OutcomeConfirmed RespondOutcome = "confirmed"
	// OutcomeRejected: the owner declined the request.
	OutcomeRejected RespondOutcome = "rejected"
	// OutcomeCapacityExceeded: the owner accepted, but the seats no longer
	// fit. The request is terminally rejected; for the passenger this is a
	// lost race, not a server fault.
	OutcomeCapacityExceeded RespondOutcome = "capacity_exceeded"
)

type RespondResult struct {
	Outcome     RespondOutcome
	Reservation domain.Reservation
	TripStatus  domain.TripStatus
}

// ConfirmationService drives the owner-facing accept/reject workflow. The
// idempotency check, the capacity commit and the status writes all happen
// inside one per-trip guard acquisition, so a double-submitted respond or a
// concurrent accept for the last seats resolves deterministically.
type ConfirmationService struct {
	trips         ports.TripRepository
	reservations  ports.ReservationRepository
	confirmations ports.ConfirmationRepository
	guard         ports.TripGuard
	allocator     *Allocator
	sink          ports.EventSink
	clock         clock.Clock
	metrics       *obs.Metrics
}

func NewConfirmationService(
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	confirmations ports.ConfirmationRepository,
	guard ports.TripGuard,
	allocator *Allocator,
	sink ports.EventSink,
	clk clock.Clock,
	metrics *obs.Metrics,
) *ConfirmationService {
	return &ConfirmationService{
		trips:         trips,
		reservations:  reservations,
		confirmations: confirmations,
		guard:         guard,
		allocator:     allocator,
		sink:          sink,
		clock:         clk,
		metrics:       metrics,
	}
}

// Respond resolves a pending confirmation request. Returns
// domain.ErrAlreadyResolved when the request was resolved before (the
// result still carries the earlier terminal state so callers can echo it).
func (s *ConfirmationService) Respond(ctx context.Context, confirmationID, owner uuid.UUID, action ConfirmationAction) (*RespondResult, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, domain.ErrInvalidAction
	}

	conf, err := s.confirmations.GetByID(ctx, confirmationID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var (
		result RespondResult
		events []domain.Event
	)

	err = s.guard.WithTrip(ctx, conf.TripID, func(ctx context.Context, trip *domain.Trip) error {
		// Reload under the guard: the pending check and the capacity
		// commit must see the same snapshot.
		conf, err := s.confirmations.GetByID(ctx, confirmationID)
		if err != nil {
			return err
		}
		if conf.OwnerID != owner {
			return domain.ErrForbidden
		}
		if conf.IsResolved() {
			rsv, err := s.reservations.GetByID(ctx, conf.ReservationID)
			if err != nil {
				return err
			}
			result = RespondResult{
				Outcome:     outcomeFromResolved(conf),
				Reservation: *rsv,
				TripStatus:  trip.Status,
			}
			return domain.ErrAlreadyResolved
		}

		rsv, err := s.reservations.GetByID(ctx, conf.ReservationID)
		if err != nil {
			return err
		}

		if action == ActionReject {
			return s.rejectLocked(ctx, trip, conf, rsv, domain.ReasonOwnerRejected, now, &result, &events)
		}

		old := trip.Status
		becameFull, err := s.allocator.TryConfirm(ctx, trip, rsv)
		if errors.Is(err, domain.ErrCapacityExceeded) {
			// Expected outcome of the race between pending requests for
			// the same last seats. Commit the terminal rejection.
			if err := s.rejectLocked(ctx, trip, conf, rsv, domain.ReasonCapacityExceeded, now, &result, &events); err != nil {
				return err
			}
			result.Outcome = OutcomeCapacityExceeded
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.confirmations.Resolve(ctx, conf.ID, domain.ConfirmationAccepted, "", now); err != nil {
			return err
		}

		result = RespondResult{
			Outcome:     OutcomeConfirmed,
			Reservation: *rsv,
			TripStatus:  trip.Status,
		}
		events = append(events, domain.Event{
			Type:          domain.EventReservationConfirmed,
			TripID:        trip.ID,
			ReservationID: rsv.ID,
			OwnerID:       trip.OwnerID,
			PassengerID:   rsv.PassengerID,
			OccurredAt:    now,
		})
		if becameFull {
			events = append(events, statusChangedEvent(trip, old, now))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) {
			return &result, err
		}
		return nil, err
	}

	for _, ev := range events {
		s.sink.Emit(ctx, ev)
	}
	return &result, nil
}

func (s *ConfirmationService) rejectLocked(
	ctx context.Context,
	trip *domain.Trip,
	conf *domain.ConfirmationRequest,
	rsv *domain.Reservation,
	reason string,
	now time.Time,
	result *RespondResult,
	events *[]domain.Event,
) error {
	if err := s.confirmations.Resolve(ctx, conf.ID, domain.ConfirmationRejected, reason, now); err != nil {
		return err
	}
	if err := s.reservations.UpdateStatus(ctx, rsv.ID, domain.ReservationCancelled); err != nil {
		return err
	}
	rsv.Status = domain.ReservationCancelled

	if reason == domain.ReasonOwnerRejected {
		s.metrics.ConfirmTotal.WithLabelValues("rejected").Inc()
	}

	*result = RespondResult{
		Outcome:     OutcomeRejected,
		Reservation: *rsv,
		TripStatus:  trip.Status,
	}
	*events = append(*events, domain.Event{
		Type:          domain.EventReservationRejected,
		TripID:        trip.ID,
		ReservationID: rsv.ID,
		OwnerID:       trip.OwnerID,
		PassengerID:   rsv.PassengerID,
		Reason:        reason,
		OccurredAt:    now,
	})
	return nil
}

func outcomeFromResolved(conf *domain.ConfirmationRequest) RespondOutcome {
	if conf.Status == domain.ConfirmationAccepted {
		return OutcomeConfirmed
	}
	if conf.ResolvedReason == domain.ReasonCapacityExceeded {
		return OutcomeCapacityExceeded
	}
	return OutcomeRejected
}
