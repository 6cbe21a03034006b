package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/clock"
	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
	"github.com/farhn21/tripshare/internal/obs"
)

// memStore backs the fake repositories. The per-trip mutex in memGuard gives
// the same serialization semantics the Postgres row lock provides, which is
// what makes the concurrency tests in this package meaningful.
type memStore struct {
	mu            sync.RWMutex
	trips         map[uuid.UUID]domain.Trip
	reservations  map[uuid.UUID]domain.Reservation
	confirmations map[uuid.UUID]domain.ConfirmationRequest

	lockMu    sync.Mutex
	tripLocks map[uuid.UUID]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		trips:         make(map[uuid.UUID]domain.Trip),
		reservations:  make(map[uuid.UUID]domain.Reservation),
		confirmations: make(map[uuid.UUID]domain.ConfirmationRequest),
		tripLocks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) tripLock(id uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if l, ok := s.tripLocks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.tripLocks[id] = l
	return l
}

type memTripRepo struct{ store *memStore }

func (r *memTripRepo) Create(_ context.Context, trip *domain.Trip) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.trips[trip.ID] = *trip
	return nil
}

func (r *memTripRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Trip, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	trip, ok := r.store.trips[id]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	return &trip, nil
}

func (r *memTripRepo) GetWithSeats(ctx context.Context, id uuid.UUID) (*domain.TripWithSeats, error) {
	trip, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sum, _ := (&memReservationRepo{store: r.store}).SumConfirmedSeats(ctx, id)
	return &domain.TripWithSeats{Trip: *trip, ConfirmedSeats: sum}, nil
}

func (r *memTripRepo) List(ctx context.Context, filter ports.TripFilter) ([]domain.TripWithSeats, error) {
	r.store.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.store.trips))
	for id, trip := range r.store.trips {
		if filter.Status != "" && trip.Status != filter.Status {
			continue
		}
		if filter.Origin != "" && trip.Origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && trip.Destination != filter.Destination {
			continue
		}
		if filter.OwnerID != uuid.Nil && trip.OwnerID != filter.OwnerID {
			continue
		}
		ids = append(ids, id)
	}
	r.store.mu.RUnlock()

	out := make([]domain.TripWithSeats, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetWithSeats(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTripRepo) UpdateDetails(_ context.Context, trip *domain.Trip) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.trips[trip.ID]
	if !ok {
		return domain.ErrTripNotFound
	}
	stored.Origin = trip.Origin
	stored.Destination = trip.Destination
	stored.Details = trip.Details
	r.store.trips[trip.ID] = stored
	return nil
}

func (r *memTripRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TripStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	trip, ok := r.store.trips[id]
	if !ok {
		return domain.ErrTripNotFound
	}
	trip.Status = status
	r.store.trips[id] = trip
	return nil
}

func (r *memTripRepo) ListDue(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var ids []uuid.UUID
	for id, trip := range r.store.trips {
		if len(ids) >= limit {
			break
		}
		if (trip.Status == domain.TripOpen || trip.Status == domain.TripFull) && !trip.ScheduledAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memReservationRepo struct{ store *memStore }

func (r *memReservationRepo) Create(_ context.Context, rsv *domain.Reservation, conf *domain.ConfirmationRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.reservations {
		if existing.TripID == rsv.TripID && existing.PassengerID == rsv.PassengerID && existing.IsActive() {
			return domain.ErrDuplicateReservation
		}
	}
	r.store.reservations[rsv.ID] = *rsv
	r.store.confirmations[conf.ID] = *conf
	return nil
}

func (r *memReservationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rsv, ok := r.store.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &rsv, nil
}

func (r *memReservationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReservationStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rsv, ok := r.store.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	rsv.Status = status
	r.store.reservations[id] = rsv
	return nil
}

func (r *memReservationRepo) SumConfirmedSeats(_ context.Context, tripID uuid.UUID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	total := 0
	for _, rsv := range r.store.reservations {
		if rsv.TripID == tripID && rsv.Status == domain.ReservationConfirmed {
			total += rsv.Seats
		}
	}
	return total, nil
}

func (r *memReservationRepo) CountConfirmed(_ context.Context, tripID uuid.UUID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, rsv := range r.store.reservations {
		if rsv.TripID == tripID && rsv.Status == domain.ReservationConfirmed {
			count++
		}
	}
	return count, nil
}

func (r *memReservationRepo) ListActiveByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Reservation
	for _, rsv := range r.store.reservations {
		if rsv.TripID == tripID && rsv.IsActive() {
			out = append(out, rsv)
		}
	}
	return out, nil
}

type memConfirmationRepo struct{ store *memStore }

func (r *memConfirmationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ConfirmationRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	conf, ok := r.store.confirmations[id]
	if !ok {
		return nil, domain.ErrConfirmationNotFound
	}
	return &conf, nil
}

func (r *memConfirmationRepo) Resolve(_ context.Context, id uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	conf, ok := r.store.confirmations[id]
	if !ok {
		return domain.ErrConfirmationNotFound
	}
	if conf.Status != domain.ConfirmationPending {
		return domain.ErrAlreadyResolved
	}
	conf.Status = status
	conf.ResolvedReason = reason
	resolvedAt := at
	conf.ResolvedAt = &resolvedAt
	r.store.confirmations[id] = conf
	return nil
}

func (r *memConfirmationRepo) ResolveByReservation(_ context.Context, reservationID uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, conf := range r.store.confirmations {
		if conf.ReservationID == reservationID && conf.Status == domain.ConfirmationPending {
			conf.Status = status
			conf.ResolvedReason = reason
			resolvedAt := at
			conf.ResolvedAt = &resolvedAt
			r.store.confirmations[id] = conf
		}
	}
	return nil
}

// memGuard serializes per trip with a mutex, mirroring the row lock the
// Postgres guard takes.
type memGuard struct {
	store *memStore
	trips *memTripRepo
}

func (g *memGuard) WithTrip(ctx context.Context, tripID uuid.UUID, fn func(ctx context.Context, trip *domain.Trip) error) error {
	l := g.store.tripLock(tripID)
	l.Lock()
	defer l.Unlock()

	trip, err := g.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	return fn(ctx, trip)
}

type captureSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *captureSink) Emit(_ context.Context, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *captureSink) ofType(t domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// fixture wires every service over one shared in-memory store.
type fixture struct {
	store         *memStore
	trips         *memTripRepo
	reservations  *memReservationRepo
	confirmations *memConfirmationRepo
	guard         *memGuard
	sink          *captureSink
	clock         clock.Clock
	metrics       *obs.Metrics

	tripSvc         *TripService
	reservationSvc  *ReservationService
	confirmationSvc *ConfirmationService
	allocator       *Allocator
	sweeper         *Sweeper
}

func newFixture(clk clock.Clock, opts ...ReservationServiceOption) *fixture {
	store := newMemStore()
	f := &fixture{
		store:         store,
		trips:         &memTripRepo{store: store},
		reservations:  &memReservationRepo{store: store},
		confirmations: &memConfirmationRepo{store: store},
		sink:          &captureSink{},
		clock:         clk,
		metrics:       obs.NewMetrics(),
	}
	f.guard = &memGuard{store: store, trips: f.trips}
	f.allocator = NewAllocator(f.trips, f.reservations, f.metrics)
	f.tripSvc = NewTripService(f.trips, f.reservations, f.confirmations, f.guard, f.sink, f.clock)
	f.reservationSvc = NewReservationService(
		f.trips, f.reservations, f.confirmations, f.guard, f.allocator, f.sink, f.clock, f.metrics, opts...,
	)
	f.confirmationSvc = NewConfirmationService(
		f.trips, f.reservations, f.confirmations, f.guard, f.allocator, f.sink, f.clock, f.metrics,
	)
	f.sweeper = NewSweeper(
		f.trips, f.reservations, f.confirmations, f.guard, f.sink, f.clock, f.metrics, time.Minute,
	)
	return f
}

func (f *fixture) seedTrip(owner uuid.UUID, capacity int, scheduledAt time.Time) *domain.Trip {
	trip := &domain.Trip{
		ID:          uuid.New(),
		OwnerID:     owner,
		Origin:      "Bandung",
		Destination: "Jakarta",
		Capacity:    capacity,
		ScheduledAt: scheduledAt,
		Status:      domain.TripOpen,
		CreatedAt:   f.clock.Now(),
	}
	_ = f.trips.Create(context.Background(), trip)
	return trip
}

func (f *fixture) tripStatus(id uuid.UUID) domain.TripStatus {
	trip, _ := f.trips.GetByID(context.Background(), id)
	return trip.Status
}

func (f *fixture) reservationStatus(id uuid.UUID) domain.ReservationStatus {
	rsv, _ := f.reservations.GetByID(context.Background(), id)
	return rsv.Status
}

func (f *fixture) confirmedSeats(tripID uuid.UUID) int {
	sum, _ := f.reservations.SumConfirmedSeats(context.Background(), tripID)
	return sum
}
