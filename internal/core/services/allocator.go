package services

import (
	"context"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/obs"
)

// Allocator is the authoritative seat accountant. Both methods must run
// inside the per-trip guard: they recompute the confirmed sum from the
// ledger and mutate reservation and trip status as one unit, so callers
// hold the guard for the whole check-and-commit.
type Allocator struct {
	trips        ports.TripRepository
	reservations ports.ReservationRepository
	metrics      *obs.Metrics
}

func NewAllocator(trips ports.TripRepository, reservations ports.ReservationRepository, metrics *obs.Metrics) *Allocator {
	return &Allocator{
		trips:        trips,
		reservations: reservations,
		metrics:      metrics,
	}
}

// TryConfirm commits the reservation's seats against the trip's capacity.
// Returns domain.ErrCapacityExceeded without mutating anything when the
// seats no longer fit. On success the reservation becomes CONFIRMED and the
// trip flips to FULL when the commit lands exactly on capacity; the returned
// flag reports that flip.
func (a *Allocator) TryConfirm(ctx context.Context, trip *domain.Trip, rsv *domain.Reservation) (becameFull bool, err error) {
	confirmed, err := a.reservations.SumConfirmedSeats(ctx, trip.ID)
	if err != nil {
		return false, err
	}

	if confirmed+rsv.Seats > trip.Capacity {
		a.metrics.ConfirmTotal.WithLabelValues("capacity_exceeded").Inc()
		return false, domain.ErrCapacityExceeded
	}

	if err := a.reservations.UpdateStatus(ctx, rsv.ID, domain.ReservationConfirmed); err != nil {
		return false, err
	}
	rsv.Status = domain.ReservationConfirmed

	if confirmed+rsv.Seats == trip.Capacity {
		if err := a.trips.UpdateStatus(ctx, trip.ID, domain.TripFull); err != nil {
			return false, err
		}
		trip.Status = domain.TripFull
		becameFull = true
	}

	a.metrics.ConfirmTotal.WithLabelValues("confirmed").Inc()
	return becameFull, nil
}

// Release recomputes the confirmed sum after a confirmed reservation was
// cancelled and re-opens a FULL trip that has seats again. The returned flag
// reports the FULL to OPEN flip.
func (a *Allocator) Release(ctx context.Context, trip *domain.Trip) (reopened bool, err error) {
	if trip.Status != domain.TripFull {
		return false, nil
	}

	confirmed, err := a.reservations.SumConfirmedSeats(ctx, trip.ID)
	if err != nil {
		return false, err
	}

	if confirmed < trip.Capacity {
		if err := a.trips.UpdateStatus(ctx, trip.ID, domain.TripOpen); err != nil {
			return false, err
		}
		trip.Status = domain.TripOpen
		return true, nil
	}
	return false, nil
}
