// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the handler layer to
// distinguish failure scenarios without string matching.  Domain errors of
// the reservation core (conflicts, state-machine guards) live in the
// rental package; the sentinels here cover ownership and bookkeeping
// concerns of the wider marketplace.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own or are not a party to.  Handlers translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrHasBookings is returned when a listing cannot be deleted because
// bookings reference it.  Handlers translate this into an HTTP 409.
var ErrHasBookings = errors.New("instrument has bookings")

// ErrAlreadyRated is returned when a booking party tries to rate the same
// booking a second time.  Handlers translate this into an HTTP 409.
var ErrAlreadyRated = errors.New("booking already rated by this side")
