package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/obs"
)

const sweepBatchSize = 100

// Sweeper retires trips whose scheduled time has passed: COMPLETED when at
// least one reservation was confirmed, EXPIRED otherwise. Still-pending
// reservations are cancelled and their confirmation requests rejected, since
// the owner can no longer act on them. Each trip is retired under the same
// per-trip guard the allocator uses.
type Sweeper struct {
	trips         ports.TripRepository
	reservations  ports.ReservationRepository
	confirmations ports.ConfirmationRepository
	guard         ports.TripGuard
	sink          ports.EventSink
	clock         clock.Clock
	metrics       *obs.Metrics
	interval      time.Duration
}

func NewSweeper(
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	confirmations ports.ConfirmationRepository,
	guard ports.TripGuard,
	sink ports.EventSink,
	clk clock.Clock,
	metrics *obs.Metrics,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		trips:         trips,
		reservations:  reservations,
		confirmations: confirmations,
		guard:         guard,
		sink:          sink,
		clock:         clk,
		metrics:       metrics,
		interval:      interval,
	}
}

// Run blocks until ctx is done, sweeping once immediately and then on every
// tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper started interval=%s", s.interval)

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce retires every due trip it can and reports how many it moved.
// Per-trip failures are logged and skipped so one bad row cannot stall the
// pass.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	s.metrics.SweepTotal.Inc()

	now := s.clock.Now()
	due, err := s.trips.ListDue(ctx, now, sweepBatchSize)
	if err != nil {
		log.Printf("sweeper: listing due trips: %v", err)
		return 0
	}

	retired := 0
	for _, id := range due {
		moved, err := s.sweepTrip(ctx, id, now)
		if err != nil {
			if errors.Is(err, domain.ErrBusy) {
				// The allocator holds the guard; the next pass picks the
				// trip up again.
				continue
			}
			log.Printf("sweeper: trip %s: %v", id, err)
			continue
		}
		if moved {
			retired++
		}
	}
	return retired
}

func (s *Sweeper) sweepTrip(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var (
		events []domain.Event
		moved  bool
	)

	err := s.guard.WithTrip(ctx, id, func(ctx context.Context, trip *domain.Trip) error {
		// Re-check under the guard; the owner may have cancelled or
		// completed the trip since the unguarded listing.
		if trip.IsTerminal() || now.Before(trip.ScheduledAt) {
			return nil
		}

		confirmed, err := s.reservations.CountConfirmed(ctx, trip.ID)
		if err != nil {
			return err
		}

		target := domain.TripExpired
		if confirmed > 0 {
			target = domain.TripCompleted
		}

		evs, err := retireTrip(ctx, s.trips, s.reservations, s.confirmations, trip, target, domain.ReasonTripExpired, now)
		if err != nil {
			return err
		}
		events = evs
		moved = true
		s.metrics.TripsRetired.WithLabelValues(string(target)).Inc()
		return nil
	})
	if err != nil {
		return false, err
	}

	for _, ev := range events {
		s.sink.Emit(ctx, ev)
	}
	return moved, nil
}
