// Package rental implements the reservation core of the marketplace: the
// availability index over an instrument's blocked date ranges, the rental
// request state machine and the conversion of accepted requests into
// bookings.  All expected failures surface as the sentinel errors below so
// that handlers can translate them into HTTP responses with errors.Is;
// infrastructure failures (SQL, network) pass through untouched and must
// never be conflated with these.
package rental

import "errors"

// Request-creation validation failures.  Recoverable by the caller
// adjusting input; never retried automatically.
var (
	// ErrSelfRequest is returned when a user tries to rent their own
	// instrument.
	ErrSelfRequest = errors.New("requester owns the instrument")

	// ErrUnavailable is returned when the requested period overlaps an
	// existing blocked range of the instrument.
	ErrUnavailable = errors.New("instrument unavailable for period")

	// ErrInvalidPeriod is returned when the requested period does not
	// span at least one full day (end must be after start).
	ErrInvalidPeriod = errors.New("invalid rental period")

	// ErrReasonTooShort is returned when a rejection reason is shorter
	// than the required minimum after trimming.
	ErrReasonTooShort = errors.New("rejection reason too short")
)

// State-machine guard violations.  These indicate a stale client view or a
// double submission; handlers surface them as "please refresh" conflicts.
var (
	// ErrNotPending is returned when accept/reject/expire is attempted on
	// a request that already left the PENDING state.
	ErrNotPending = errors.New("request is not pending")

	// ErrNotExpirable is returned when expiry is attempted on a pending
	// request whose start date has not passed yet.
	ErrNotExpirable = errors.New("request is not expirable yet")

	// ErrNotAccepted is returned when conversion is attempted on a
	// request that is not in the ACCEPTED state.
	ErrNotAccepted = errors.New("request is not accepted")
)

// ErrConflict is returned when a booking block cannot be committed because
// it overlaps an already committed booking range.  This is the one genuine
// concurrency race in the system: the losing request stays ACCEPTED but
// unconverted and must be reconciled explicitly, never retried silently.
var ErrConflict = errors.New("booking period conflict")

// Lookup sentinels.
var (
	ErrRequestNotFound    = errors.New("rental request not found")
	ErrInstrumentNotFound = errors.New("instrument not found")
)
