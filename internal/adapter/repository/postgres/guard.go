package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/obs"
)

const defaultLockTimeout = 3 * time.Second

// TripGuard serializes writers of one trip's aggregate state by locking the
// trip row with SELECT ... FOR UPDATE inside a transaction. lock_timeout
// bounds the wait so contention surfaces as domain.ErrBusy instead of a
// hang. Rows of different trips never block each other.
type TripGuard struct {
	db          *sql.DB
	lockTimeout time.Duration
	metrics     *obs.Metrics
}

func NewTripGuard(db *sql.DB, lockTimeout time.Duration, metrics *obs.Metrics) *TripGuard {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &TripGuard{db: db, lockTimeout: lockTimeout, metrics: metrics}
}

func (g *TripGuard) WithTrip(ctx context.Context, tripID uuid.UUID, fn func(ctx context.Context, trip *domain.Trip) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.lockTimeout+time.Second)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// lock_timeout is transaction-local, so a slow competing confirmation
	// turns into ErrBusy rather than an unbounded wait.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", g.lockTimeout.Milliseconds())); err != nil {
		return err
	}

	const query = `
	SELECT id, owner_id, origin, destination, details, capacity, scheduled_at, status, created_at
	FROM trips
	WHERE id = $1
	FOR UPDATE
	`

	var trip domain.Trip
	err = tx.QueryRowContext(ctx, query, tripID).Scan(
		&trip.ID,
		&trip.OwnerID,
		&trip.Origin,
		&trip.Destination,
		&trip.Details,
		&trip.Capacity,
		&trip.ScheduledAt,
		&trip.Status,
		&trip.CreatedAt,
	)
	if err != nil {
		return g.mapLockErr(err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx, &trip); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return g.mapLockErr(err)
	}
	return nil
}

func (g *TripGuard) mapLockErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrTripNotFound
	case isLockNotAvailable(err), isSerializationFailure(err), errors.Is(err, context.DeadlineExceeded):
		g.metrics.GuardBusyTotal.Inc()
		return domain.ErrBusy
	}
	return err
}
