package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
	"github.com/farhn21/tripshare/internal/core/ports"
)

type TripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	const query = `
	INSERT INTO trips (id, owner_id, origin, destination, details, capacity, scheduled_at, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := runner(ctx, r.db).ExecContext(ctx, query,
		trip.ID,
		trip.OwnerID,
		trip.Origin,
		trip.Destination,
		trip.Details,
		trip.Capacity,
		trip.ScheduledAt,
		trip.Status,
		trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const query = `
	SELECT id, owner_id, origin, destination, details, capacity, scheduled_at, status, created_at
	FROM trips
	WHERE id = $1
	`

	var trip domain.Trip
	err := runner(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) GetWithSeats(ctx context.Context, id uuid.UUID) (*domain.TripWithSeats, error) {
	const query = `
	SELECT t.id, t.owner_id, t.origin, t.destination, t.details, t.capacity, t.scheduled_at, t.status, t.created_at,
	       COALESCE(SUM(r.seats) FILTER (WHERE r.status = 'CONFIRMED'), 0)
	FROM trips t
	LEFT JOIN reservations r ON r.trip_id = t.id
	WHERE t.id = $1
	GROUP BY t.id
	`

	var trip domain.TripWithSeats
	err := runner(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.OwnerID,
		&trip.Origin,
		&trip.Destination,
		&trip.Details,
		&trip.Capacity,
		&trip.ScheduledAt,
		&trip.Status,
		&trip.CreatedAt,
		&trip.ConfirmedSeats,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) List(ctx context.Context, filter ports.TripFilter) ([]domain.TripWithSeats, error) {
	query := `
	SELECT t.id, t.owner_id, t.origin, t.destination, t.details, t.capacity, t.scheduled_at, t.status, t.created_at,
	       COALESCE(SUM(r.seats) FILTER (WHERE r.status = 'CONFIRMED'), 0)
	FROM trips t
	LEFT JOIN reservations r ON r.trip_id = t.id
	WHERE 1=1
	`

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		query += " AND t.status = " + arg(filter.Status)
	}
	if filter.Origin != "" {
		query += " AND t.origin ILIKE " + arg(filter.Origin)
	}
	if filter.Destination != "" {
		query += " AND t.destination ILIKE " + arg(filter.Destination)
	}
	if filter.OwnerID != uuid.Nil {
		query += " AND t.owner_id = " + arg(filter.OwnerID)
	}
	query += " GROUP BY t.id ORDER BY t.scheduled_at"

	rows, err := runner(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.TripWithSeats
	for rows.Next() {
		var trip domain.TripWithSeats
		if err := rows.Scan(
			&trip.ID,
			&trip.OwnerID,
			&trip.Origin,
			&trip.Destination,
			&trip.Details,
			&trip.Capacity,
			&trip.ScheduledAt,
			&trip.Status,
			&trip.CreatedAt,
			&trip.ConfirmedSeats,
		); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (r *TripRepository) UpdateDetails(ctx context.Context, trip *domain.Trip) error {
	const query = `
	UPDATE trips
	SET origin = $1, destination = $2, details = $3
	WHERE id = $4
	`

	result, err := runner(ctx, r.db).ExecContext(ctx, query, trip.Origin, trip.Destination, trip.Details, trip.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) error {
	const query = `
	UPDATE trips
	SET status = $1
	WHERE id = $2
	`

	result, err := runner(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTripNotFound
	}
	return nil
}

func (r *TripRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const query = `
	SELECT id FROM trips
	WHERE status IN ('OPEN', 'FULL') AND scheduled_at <= $1
	ORDER BY scheduled_at
	LIMIT $2
	`

	rows, err := runner(ctx, r.db).QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
