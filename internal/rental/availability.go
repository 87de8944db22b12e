package rental

import (
	"context"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// AvailabilityIndex answers "is this instrument free for this period?" and
// maintains the set of blocking ranges.  It holds no state of its own;
// every query goes to the injected store so the index is always consistent
// with the database.
type AvailabilityIndex struct {
	store Store
}

// NewAvailabilityIndex returns an index backed by the given store.
func NewAvailabilityIndex(store Store) *AvailabilityIndex {
	if store == nil {
		panic("nil store passed to NewAvailabilityIndex")
	}
	return &AvailabilityIndex{store: store}
}

// IsAvailable reports whether period overlaps no existing range of the
// instrument, MANUAL or BOOKING origin alike.  No side effects.  The
// stored ranges may be unmerged or duplicated; the answer is correct
// either way because every range is tested individually.
func (a *AvailabilityIndex) IsAvailable(ctx context.Context, instrumentID uint64, period model.DateRange) (bool, error) {
	ranges, err := a.store.Ranges(ctx, instrumentID)
	if err != nil {
		return false, err
	}
	period = period.Normalize()
	for _, ur := range ranges {
		if ur.Range.Overlaps(period) {
			return false, nil
		}
	}
	return true, nil
}

// AddManualBlock appends an owner-declared blocked range.  Owners may
// over-specify: overlapping manual ranges are accepted, only an exact
// duplicate is dropped (handled by the store).  No validation against
// existing ranges is performed.
func (a *AvailabilityIndex) AddManualBlock(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	return a.store.AppendManualRange(ctx, instrumentID, r.Normalize())
}

// RemoveManualBlock removes one manual range by id.  A missing id is a
// silent no-op: concurrent removal from two devices is expected and is not
// an error.
func (a *AvailabilityIndex) RemoveManualBlock(ctx context.Context, instrumentID, rangeID uint64) error {
	return a.store.RemoveManualRange(ctx, instrumentID, rangeID)
}

// AddBookingBlock commits a booking-derived range.  It fails with
// ErrConflict when r overlaps an existing BOOKING range; this is the
// double-booking guard.  MANUAL ranges are deliberately not checked: a
// conversion only happens after the request already passed IsAvailable,
// and the owner clearing a manual block afterwards must not invalidate the
// confirmed booking.  The store serializes this call per instrument.
func (a *AvailabilityIndex) AddBookingBlock(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	return a.store.AppendBookingRange(ctx, instrumentID, r.Normalize())
}

// Blocks returns all blocked ranges of an instrument for calendar display.
func (a *AvailabilityIndex) Blocks(ctx context.Context, instrumentID uint64) ([]model.UnavailableRange, error) {
	return a.store.Ranges(ctx, instrumentID)
}
