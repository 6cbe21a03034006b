package database

import (
	"database/sql"
	"fmt"
)

// Schema statements are idempotent so Migrate can run at every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		capacity INT NOT NULL CHECK (capacity > 0),
		scheduled_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS trips_due_idx
		ON trips (scheduled_at)
		WHERE status IN ('OPEN', 'FULL')`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips (id),
		passenger_id UUID NOT NULL,
		seats INT NOT NULL CHECK (seats >= 1),
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	// One active reservation per (trip, passenger); the index is the
	// enforcement, not application logic.
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_active_uniq
		ON reservations (trip_id, passenger_id)
		WHERE status IN ('PENDING', 'CONFIRMED')`,
	`CREATE INDEX IF NOT EXISTS reservations_confirmed_idx
		ON reservations (trip_id)
		WHERE status = 'CONFIRMED'`,
	`CREATE TABLE IF NOT EXISTS confirmation_requests (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips (id),
		reservation_id UUID NOT NULL REFERENCES reservations (id),
		owner_id UUID NOT NULL,
		passenger_id UUID NOT NULL,
		status TEXT NOT NULL,
		resolved_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		resolved_at TIMESTAMPTZ
	)`,
	// At most one open confirmation request per reservation.
	`CREATE UNIQUE INDEX IF NOT EXISTS confirmations_pending_uniq
		ON confirmation_requests (reservation_id)
		WHERE status = 'PENDING'`,
}

func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
