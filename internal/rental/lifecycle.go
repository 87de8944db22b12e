package rental

import (
	"context"
	"strings"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// MinReasonLen is the minimum trimmed length of a rejection reason.
const MinReasonLen = 10

// Lifecycle enforces the rental request state machine:
//
//	PENDING -> ACCEPTED | REJECTED | EXPIRED
//
// All three targets are terminal and no transition is re-entrant: a second
// accept is the second call's ErrNotPending, not a no-op success.  That
// guard is durable (a conditional write in the store), independent of any
// UI affordance like a disabled button.
type Lifecycle struct {
	store Store
	index *AvailabilityIndex
}

// NewLifecycle returns a Lifecycle using the given store and index.
func NewLifecycle(store Store, index *AvailabilityIndex) *Lifecycle {
	if store == nil || index == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	return &Lifecycle{store: store, index: index}
}

// Create validates and persists a new PENDING request.
//
// Failure modes: ErrSelfRequest when requester and owner are the same
// user, ErrInvalidPeriod when the period does not span at least one full
// day (end must be after start), ErrUnavailable when the period overlaps
// any blocked range.  On success the total price is fixed at
// pricePerDayCents * inclusive days and the persisted request is returned.
func (l *Lifecycle) Create(ctx context.Context, instrumentID, requesterID, ownerID uint64, period model.DateRange, pricePerDayCents uint32, note *string) (*model.RentalRequest, error) {
	if requesterID == ownerID {
		return nil, ErrSelfRequest
	}
	period = period.Normalize()
	if !period.End.After(period.Start) {
		return nil, ErrInvalidPeriod
	}
	free, err := l.index.IsAvailable(ctx, instrumentID, period)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrUnavailable
	}
	req := &model.RentalRequest{
		InstrumentID:     instrumentID,
		RequesterID:      requesterID,
		OwnerID:          ownerID,
		Period:           period,
		PricePerDayCents: pricePerDayCents,
		TotalPriceCents:  uint64(pricePerDayCents) * uint64(period.DaysInclusive()),
		Note:             note,
		Status:           model.RequestPending,
	}
	if err := l.store.InsertRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Accept transitions PENDING -> ACCEPTED.  Returns ErrNotPending when the
// request already left PENDING, including when a concurrent accept won the
// race.  Accept does not touch the availability index; committing the
// booking block is the converter's job.
func (l *Lifecycle) Accept(ctx context.Context, requestID uint64) (*model.RentalRequest, error) {
	return l.transition(ctx, requestID, model.RequestAccepted, nil)
}

// Reject transitions PENDING -> REJECTED with a mandatory reason of at
// least MinReasonLen characters after trimming.
func (l *Lifecycle) Reject(ctx context.Context, requestID uint64, reason string) (*model.RentalRequest, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinReasonLen {
		return nil, ErrReasonTooShort
	}
	return l.transition(ctx, requestID, model.RequestRejected, &reason)
}

// Expire transitions PENDING -> EXPIRED, allowed only once the request's
// start date has passed: startOfDay(now) must be strictly after the period
// start.  ErrNotExpirable otherwise.
func (l *Lifecycle) Expire(ctx context.Context, requestID uint64, now time.Time) (*model.RentalRequest, error) {
	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending {
		return nil, ErrNotPending
	}
	if !model.StartOfDay(now).After(req.Period.Start) {
		return nil, ErrNotExpirable
	}
	return l.transition(ctx, requestID, model.RequestExpired, nil)
}

// ExpireDue marks every overdue PENDING request EXPIRED and returns how
// many were transitioned.  Requests that race with an accept or reject are
// simply skipped; the conditional update loses and that is fine.
func (l *Lifecycle) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := l.store.PendingStartedBefore(ctx, model.StartOfDay(now))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		ok, err := l.store.UpdateRequestStatus(ctx, id, model.RequestPending, model.RequestExpired, nil)
		if err != nil {
			return expired, err
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

// transition performs the conditional PENDING -> to write and reloads the
// request.  The store's conditional update is what makes the state machine
// safe under concurrent calls.
func (l *Lifecycle) transition(ctx context.Context, requestID uint64, to string, reason *string) (*model.RentalRequest, error) {
	ok, err := l.store.UpdateRequestStatus(ctx, requestID, model.RequestPending, to, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish "gone" from "already decided" for the caller.
		if _, getErr := l.store.GetRequest(ctx, requestID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotPending
	}
	return l.store.GetRequest(ctx, requestID)
}
