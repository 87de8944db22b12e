package rental

import (
	"context"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// Store is the persistence collaborator injected into the domain
// components.  The SQL implementation lives in the repository package; an
// in-memory implementation in this package backs the tests.
//
// Atomicity contract: AppendBookingRange must perform its overlap check
// and the append as one indivisible unit, serialized per instrument (the
// SQL store locks the instrument's rows with SELECT ... FOR UPDATE, the
// memory store holds a mutex).  UpdateRequestStatus must be conditional on
// the current status so that two concurrent transitions on the same
// request cannot both succeed.
type Store interface {
	// Ranges returns every blocked range of the instrument, MANUAL and
	// BOOKING origin alike.  ErrInstrumentNotFound when the instrument
	// does not exist.
	Ranges(ctx context.Context, instrumentID uint64) ([]model.UnavailableRange, error)

	// AppendManualRange stores an owner-declared block.  Appending a range
	// exactly equal to an existing MANUAL range is a no-op.
	AppendManualRange(ctx context.Context, instrumentID uint64, r model.DateRange) error

	// RemoveManualRange deletes one MANUAL range by id.  Removing an id
	// that no longer exists (or that belongs to a BOOKING range) is a
	// silent no-op; concurrent removal is expected.
	RemoveManualRange(ctx context.Context, instrumentID, rangeID uint64) error

	// AppendBookingRange commits a BOOKING-origin block.  Returns
	// ErrConflict when r overlaps any existing BOOKING range of the
	// instrument.  MANUAL ranges are not checked.
	AppendBookingRange(ctx context.Context, instrumentID uint64, r model.DateRange) error

	// InsertRequest persists a new request and fills in its ID and
	// timestamps.
	InsertRequest(ctx context.Context, req *model.RentalRequest) error

	// GetRequest loads a request by id.  ErrRequestNotFound when absent.
	GetRequest(ctx context.Context, id uint64) (*model.RentalRequest, error)

	// UpdateRequestStatus transitions a request from status `from` to
	// status `to`, storing reason when non-nil.  It reports false when
	// the request was not in `from` (lost race or stale view) and makes
	// no change in that case.
	UpdateRequestStatus(ctx context.Context, id uint64, from, to string, reason *string) (bool, error)

	// PendingStartedBefore returns the ids of PENDING requests whose
	// period start is strictly before the given day.  Used by the expiry
	// sweep.
	PendingStartedBefore(ctx context.Context, day time.Time) ([]uint64, error)

	// InsertBooking persists a booking and fills in its ID and creation
	// timestamp.  The source_request_id unique key makes a second insert
	// for the same request fail.
	InsertBooking(ctx context.Context, b *model.Booking) error
}
