package domain

import "errors"

var (
	ErrTripNotFound         = errors.New("trip not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrConfirmationNotFound = errors.New("confirmation request not found")

	ErrInvalidCapacity = errors.New("capacity must be greater than zero")
	ErrInvalidSeats    = errors.New("seats must be at least one")
	ErrScheduleInPast  = errors.New("scheduled time must be in the future")

	ErrForbidden     = errors.New("caller is not allowed to perform this action")
	ErrOwnTrip       = errors.New("cannot reserve a seat on your own trip")
	ErrInvalidAction = errors.New("action must be accept or reject")

	// ErrDuplicateReservation: the passenger already holds a pending or
	// confirmed reservation on the trip.
	ErrDuplicateReservation = errors.New("active reservation already exists for this trip")

	// ErrCapacityUnavailable: the trip was full or not open at request time.
	ErrCapacityUnavailable = errors.New("requested seats are not available")

	// ErrCapacityExceeded: the request lost the race for the last seats at
	// confirmation time. An expected outcome under contention, not a fault.
	ErrCapacityExceeded = errors.New("capacity exceeded at confirmation time")

	ErrAlreadyResolved      = errors.New("confirmation request already resolved")
	ErrReservationNotActive = errors.New("reservation is not pending or confirmed")
	ErrTripNotActive        = errors.New("trip is already completed, cancelled or expired")
	ErrTooLate              = errors.New("the cancellation window has closed")

	// ErrBusy: the per-trip guard could not be acquired within the bounded
	// timeout. Safe to retry with backoff.
	ErrBusy = errors.New("trip is busy, retry later")
)
