package rental

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

func newCore() (*MemoryStore, *AvailabilityIndex, *Lifecycle, *Converter) {
	store := NewMemoryStore()
	idx := NewAvailabilityIndex(store)
	return store, idx, NewLifecycle(store, idx), NewConverter(store, idx)
}

const (
	instID  = uint64(1)
	ownerID = uint64(10)
	renter  = uint64(20)
)

func TestCreateComputesTotalPrice(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()

	// R$50.00/day for 3 inclusive days -> R$150.00
	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, uint64(15000), req.TotalPriceCents)
	assert.NotZero(t, req.ID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	_, idx, lc, _ := newCore()

	// requesting your own instrument
	_, err := lc.Create(ctx, instID, ownerID, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	assert.ErrorIs(t, err, ErrSelfRequest)

	// a rental must span at least one full day: end == start is invalid
	_, err = lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 10)), 5000, nil)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 12), day(2024, 3, 10)), 5000, nil)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	// a manual block inside the period makes it unavailable
	require.NoError(t, idx.AddManualBlock(ctx, instID, period(day(2024, 3, 11), day(2024, 3, 11))))
	_, err = lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateBlockedByConvertedBooking(t *testing.T) {
	ctx := context.Background()
	_, _, lc, cv := newCore()

	r1, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 3, 10), day(2024, 3, 12)), 5000, nil)
	require.NoError(t, err)
	_, err = lc.Accept(ctx, r1.ID)
	require.NoError(t, err)
	_, err = cv.Convert(ctx, r1.ID)
	require.NoError(t, err)

	// touching the booking's end date is an inclusive overlap at 03-12
	_, err = lc.Create(ctx, instID, uint64(21), ownerID,
		period(day(2024, 3, 12), day(2024, 3, 14)), 5000, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	// the day after is free
	_, err = lc.Create(ctx, instID, uint64(21), ownerID,
		period(day(2024, 3, 13), day(2024, 3, 15)), 5000, nil)
	assert.NoError(t, err)
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 4, 1), day(2024, 4, 3)), 2500, nil)
	require.NoError(t, err)

	_, err = lc.Reject(ctx, req.ID, "no")
	assert.ErrorIs(t, err, ErrReasonTooShort)

	// padding with whitespace does not help
	_, err = lc.Reject(ctx, req.ID, "   no    ")
	assert.ErrorIs(t, err, ErrReasonTooShort)

	rejected, err := lc.Reject(ctx, req.ID, "instrument is in repair that week")
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, rejected.Status)
	require.NotNil(t, rejected.DecisionReason)
	assert.Equal(t, "instrument is in repair that week", *rejected.DecisionReason)
}

func TestTerminalStatesAcceptNoFurtherTransition(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 4, 1), day(2024, 4, 3)), 2500, nil)
	require.NoError(t, err)

	accepted, err := lc.Accept(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, accepted.Status)

	// second accept is a failure, not a no-op success
	_, err = lc.Accept(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = lc.Reject(ctx, req.ID, "changed my mind about all this")
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = lc.Expire(ctx, req.ID, day(2025, 1, 1))
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestExpireOnlyAfterStartDatePassed(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()

	req, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 4, 10), day(2024, 4, 12)), 2500, nil)
	require.NoError(t, err)

	// before the start date
	_, err = lc.Expire(ctx, req.ID, day(2024, 4, 9))
	assert.ErrorIs(t, err, ErrNotExpirable)

	// during the start day itself it is still decidable
	_, err = lc.Expire(ctx, req.ID, time.Date(2024, 4, 10, 18, 30, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNotExpirable)

	expired, err := lc.Expire(ctx, req.ID, day(2024, 4, 11))
	require.NoError(t, err)
	assert.Equal(t, model.RequestExpired, expired.Status)
}

func TestExpireDueSweepsOnlyOverduePending(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()

	overdue, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 5, 1), day(2024, 5, 3)), 1000, nil)
	require.NoError(t, err)
	upcoming, err := lc.Create(ctx, instID, renter, ownerID,
		period(day(2024, 6, 1), day(2024, 6, 3)), 1000, nil)
	require.NoError(t, err)
	decided, err := lc.Create(ctx, uint64(2), renter, ownerID,
		period(day(2024, 5, 1), day(2024, 5, 2)), 1000, nil)
	require.NoError(t, err)
	_, err = lc.Accept(ctx, decided.ID)
	require.NoError(t, err)

	n, err := lc.ExpireDue(ctx, day(2024, 5, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	store := lc.store.(*MemoryStore)
	got, err := store.GetRequest(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestExpired, got.Status)
	got, err = store.GetRequest(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, got.Status)
	got, err = store.GetRequest(ctx, decided.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, got.Status)
}

func TestTransitionOnMissingRequest(t *testing.T) {
	ctx := context.Background()
	_, _, lc, _ := newCore()
	_, err := lc.Accept(ctx, 999)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
