package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
)

type ConfirmationRepository struct {
	db *sql.DB
}

func NewConfirmationRepository(db *sql.DB) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

func (r *ConfirmationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfirmationRequest, error) {
	const query = `
	SELECT id, trip_id, reservation_id, owner_id, passenger_id, status, resolved_reason, created_at, resolved_at
	FROM confirmation_requests
	WHERE id = $1
	`

	var (
		conf       domain.ConfirmationRequest
		reason     sql.NullString
		resolvedAt sql.NullTime
	)
	err := runner(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&conf.ID,
		&conf.TripID,
		&conf.ReservationID,
		&conf.OwnerID,
		&conf.PassengerID,
		&conf.Status,
		&reason,
		&conf.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConfirmationNotFound
		}
		return nil, err
	}

	if reason.Valid {
		conf.ResolvedReason = reason.String
	}
	if resolvedAt.Valid {
		conf.ResolvedAt = &resolvedAt.Time
	}
	return &conf, nil
}

// Resolve is the pending-to-terminal transition. The WHERE status clause
// makes it a compare-and-swap: a request resolved by a concurrent call
// yields zero rows and domain.ErrAlreadyResolved.
func (r *ConfirmationRepository) Resolve(ctx context.Context, id uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error {
	const query = `
	UPDATE confirmation_requests
	SET status = $1, resolved_reason = NULLIF($2, ''), resolved_at = $3
	WHERE id = $4 AND status = 'PENDING'
	`

	result, err := runner(ctx, r.db).ExecContext(ctx, query, status, reason, at, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyResolved
	}
	return nil
}

func (r *ConfirmationRepository) ResolveByReservation(ctx context.Context, reservationID uuid.UUID, status domain.ConfirmationStatus, reason string, at time.Time) error {
	const query = `
	UPDATE confirmation_requests
	SET status = $1, resolved_reason = NULLIF($2, ''), resolved_at = $3
	WHERE reservation_id = $4 AND status = 'PENDING'
	`

	_, err := runner(ctx, r.db).ExecContext(ctx, query, status, reason, at, reservationID)
	return err
}
