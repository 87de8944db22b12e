package rental

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func period(s, e time.Time) model.DateRange { return model.DateRange{Start: s, End: e} }

func TestIsAvailableAfterManualBlock(t *testing.T) {
	ctx := context.Background()
	idx := NewAvailabilityIndex(NewMemoryStore())
	const inst = uint64(1)

	blocked := period(day(2024, 3, 11), day(2024, 3, 11))
	require.NoError(t, idx.AddManualBlock(ctx, inst, blocked))

	// the blocked range itself
	free, err := idx.IsAvailable(ctx, inst, blocked)
	require.NoError(t, err)
	assert.False(t, free)

	// any overlapping range
	free, err = idx.IsAvailable(ctx, inst, period(day(2024, 3, 10), day(2024, 3, 12)))
	require.NoError(t, err)
	assert.False(t, free)

	// a disjoint range stays free
	free, err = idx.IsAvailable(ctx, inst, period(day(2024, 3, 12), day(2024, 3, 14)))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAddManualBlockDedupesExactDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	idx := NewAvailabilityIndex(store)
	const inst = uint64(1)

	r := period(day(2024, 5, 1), day(2024, 5, 3))
	require.NoError(t, idx.AddManualBlock(ctx, inst, r))
	require.NoError(t, idx.AddManualBlock(ctx, inst, r))

	blocks, err := idx.Blocks(ctx, inst)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)

	// overlapping but non-identical manual ranges are allowed
	require.NoError(t, idx.AddManualBlock(ctx, inst, period(day(2024, 5, 2), day(2024, 5, 4))))
	blocks, err = idx.Blocks(ctx, inst)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

func TestRemoveManualBlockIsSilentWhenGone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	idx := NewAvailabilityIndex(store)
	const inst = uint64(1)

	require.NoError(t, idx.AddManualBlock(ctx, inst, period(day(2024, 6, 1), day(2024, 6, 2))))
	blocks, err := idx.Blocks(ctx, inst)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	id := blocks[0].ID

	require.NoError(t, idx.RemoveManualBlock(ctx, inst, id))
	// second removal of the same id is a no-op, not an error
	require.NoError(t, idx.RemoveManualBlock(ctx, inst, id))

	blocks, err = idx.Blocks(ctx, inst)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestRemoveManualBlockNeverTouchesBookingRanges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	idx := NewAvailabilityIndex(store)
	const inst = uint64(1)

	require.NoError(t, idx.AddBookingBlock(ctx, inst, period(day(2024, 7, 1), day(2024, 7, 5))))
	blocks, err := idx.Blocks(ctx, inst)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	require.NoError(t, idx.RemoveManualBlock(ctx, inst, blocks[0].ID))
	blocks, err = idx.Blocks(ctx, inst)
	require.NoError(t, err)
	assert.Len(t, blocks, 1, "booking range must survive a manual removal call")
}

func TestAddBookingBlockConflictsOnlyWithBookings(t *testing.T) {
	ctx := context.Background()
	idx := NewAvailabilityIndex(NewMemoryStore())
	const inst = uint64(1)

	// a manual block does not stop a booking commit: the request already
	// passed IsAvailable and the owner may have cleared the block since
	require.NoError(t, idx.AddManualBlock(ctx, inst, period(day(2024, 8, 1), day(2024, 8, 10))))
	require.NoError(t, idx.AddBookingBlock(ctx, inst, period(day(2024, 8, 5), day(2024, 8, 7))))

	// a second booking overlapping the first is the double-booking race
	err := idx.AddBookingBlock(ctx, inst, period(day(2024, 8, 7), day(2024, 8, 9)))
	assert.ErrorIs(t, err, ErrConflict)

	// disjoint booking is fine
	require.NoError(t, idx.AddBookingBlock(ctx, inst, period(day(2024, 8, 8), day(2024, 8, 9))))
}

func TestBookingRangesStayPairwiseDisjoint(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	idx := NewAvailabilityIndex(store)
	const inst = uint64(1)

	attempts := []model.DateRange{
		period(day(2024, 9, 1), day(2024, 9, 3)),
		period(day(2024, 9, 3), day(2024, 9, 5)), // touches first -> conflict
		period(day(2024, 9, 4), day(2024, 9, 6)),
		period(day(2024, 9, 10), day(2024, 9, 10)),
		period(day(2024, 9, 5), day(2024, 9, 11)), // spans third and fourth -> conflict
	}
	for _, r := range attempts {
		_ = idx.AddBookingBlock(ctx, inst, r)
	}

	blocks, err := idx.Blocks(ctx, inst)
	require.NoError(t, err)
	var bookings []model.UnavailableRange
	for _, b := range blocks {
		if b.Origin == model.OriginBooking {
			bookings = append(bookings, b)
		}
	}
	require.Len(t, bookings, 3)
	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			assert.False(t, bookings[i].Range.Overlaps(bookings[j].Range),
				"booking ranges %d and %d overlap", i, j)
		}
	}
}
