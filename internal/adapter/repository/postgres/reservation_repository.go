package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farhn21/tripshare/internal/core/domain"
)

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts the reservation and its confirmation request in one
// transaction. The partial unique index on (trip_id, passenger_id) over
// active rows is what enforces one active reservation per passenger; a
// violation maps to domain.ErrDuplicateReservation.
func (r *ReservationRepository) Create(ctx context.Context, rsv *domain.Reservation, conf *domain.ConfirmationRequest) error {
	return withTx(ctx, r.db, func(ctx context.Context) error {
		const insertReservation = `
		INSERT INTO reservations (id, trip_id, passenger_id, seats, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		`

		_, err := runner(ctx, r.db).ExecContext(ctx, insertReservation,
			rsv.ID, rsv.TripID, rsv.PassengerID, rsv.Seats, rsv.Status, rsv.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateReservation
			}
			return fmt.Errorf("insert reservation: %w", err)
		}

		const insertConfirmation = `
		INSERT INTO confirmation_requests (id, trip_id, reservation_id, owner_id, passenger_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err = runner(ctx, r.db).ExecContext(ctx, insertConfirmation,
			conf.ID, conf.TripID, conf.ReservationID, conf.OwnerID, conf.PassengerID, conf.Status, conf.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert confirmation request: %w", err)
		}
		return nil
	})
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const query = `
	SELECT id, trip_id, passenger_id, seats, status, created_at
	FROM reservations
	WHERE id = $1
	`

	var rsv domain.Reservation
	err := runner(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&rsv.ID,
		&rsv.TripID,
		&rsv.PassengerID,
		&rsv.Seats,
		&rsv.Status,
		&rsv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return &rsv, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error {
	const query = `
	UPDATE reservations
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
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) SumConfirmedSeats(ctx context.Context, tripID uuid.UUID) (int, error) {
	const query = `
	SELECT COALESCE(SUM(seats), 0)
	FROM reservations
	WHERE trip_id = $1 AND status = 'CONFIRMED'
	`

	var total int
	if err := runner(ctx, r.db).QueryRowContext(ctx, query, tripID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum confirmed seats: %w", err)
	}
	return total, nil
}

func (r *ReservationRepository) CountConfirmed(ctx context.Context, tripID uuid.UUID) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM reservations
	WHERE trip_id = $1 AND status = 'CONFIRMED'
	`

	var count int
	if err := runner(ctx, r.db).QueryRowContext(ctx, query, tripID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReservationRepository) ListActiveByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Reservation, error) {
	const query = `
	SELECT id, trip_id, passenger_id, seats, status, created_at
	FROM reservations
	WHERE trip_id = $1 AND status IN ('PENDING', 'CONFIRMED')
	ORDER BY created_at
	`

	rows, err := runner(ctx, r.db).QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var rsv domain.Reservation
		if err := rows.Scan(
			&rsv.ID,
			&rsv.TripID,
			&rsv.PassengerID,
			&rsv.Seats,
			&rsv.Status,
			&rsv.CreatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, rsv)
	}
	return reservations, rows.Err()
}
