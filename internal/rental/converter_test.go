package rental

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

func TestConvertCreatesBookingAndBlocksRange(t *testing.T) {
	ctx := context.Background()
	_, idx, lc, cv := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)
	_, err = lc.Accept(ctx, req.ID)
	require.NoError(t, err)

	b, err := cv.Convert(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, b.SourceRequestID)
	assert.Equal(t, renter, b.RenterID)
	assert.Equal(t, ownerID, b.OwnerID)
	assert.Equal(t, uint64(15000), b.TotalPriceCents)
	assert.NotZero(t, b.ID)

	blocks, err := idx.Blocks(ctx, instID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, model.OriginBooking, blocks[0].Origin)
	assert.True(t, blocks[0].Range.Equal(req.Period))
}

func TestConvertRequiresAcceptedStatus(t *testing.T) {
	ctx := context.Background()
	_, _, lc, cv := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)

	_, err = cv.Convert(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotAccepted)

	_, err = lc.Reject(ctx, req.ID, "not renting out that weekend")
	require.NoError(t, err)
	_, err = cv.Convert(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotAccepted)

	_, err = cv.Convert(ctx, 404)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestConvertConflictLeavesRequestAccepted(t *testing.T) {
	ctx := context.Background()
	store, _, lc, cv := newCore()

	// two requests for overlapping periods both get accepted: the original
	// system only disabled a UI button, so this race is possible
	r1, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)
	r2, err := lc.Create(ctx, instID, uint64(21), ownerID,
		period(day(2024, 3, 11), day(2024, 3, 13)), 5000, nil)
	require.NoError(t, err)

	_, err = lc.Accept(ctx, r1.ID)
	require.NoError(t, err)
	_, err = lc.Accept(ctx, r2.ID)
	require.NoError(t, err)

	_, err = cv.Convert(ctx, r1.ID)
	require.NoError(t, err)

	// the loser stays accepted-but-unconverted and must be reconciled
	_, err = cv.Convert(ctx, r2.ID)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.GetRequest(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, got.Status)
}

func TestConvertTwiceForSameRequest(t *testing.T) {
	ctx := context.Background()
	_, _, lc, cv := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)
	_, err = lc.Accept(ctx, req.ID)
	require.NoError(t, err)
	_, err = cv.Convert(ctx, req.ID)
	require.NoError(t, err)

	// the request is still ACCEPTED but its own range now blocks it
	_, err = cv.Convert(ctx, req.ID)
	assert.ErrorIs(t, err, ErrConflict)
}
