package rental

import (
	"context"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// Converter turns an ACCEPTED request into a confirmed booking and folds
// its period back into the availability index so subsequent requests see
// the instrument as blocked.
type Converter struct {
	store Store
	index *AvailabilityIndex
}

// NewConverter returns a Converter using the given store and index.
func NewConverter(store Store, index *AvailabilityIndex) *Converter {
	if store == nil || index == nil {
		panic("nil dependency passed to NewConverter")
	}
	return &Converter{store: store, index: index}
}

// Convert commits the booking block for an accepted request and creates
// the Booking record.
//
// ErrNotAccepted when the request is not ACCEPTED.  ErrConflict when
// another request's booking was committed first for an overlapping period;
// in that case the request remains ACCEPTED but unconverted and the caller
// must surface a reconciliation error rather than proceed, since
// proceeding would double-book the instrument.  The store serializes the
// block commit per instrument, so two converts for the same instrument
// can never interleave between the overlap check and the append.
func (cv *Converter) Convert(ctx context.Context, requestID uint64) (*model.Booking, error) {
	req, err := cv.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestAccepted {
		return nil, ErrNotAccepted
	}
	if err := cv.index.AddBookingBlock(ctx, req.InstrumentID, req.Period); err != nil {
		return nil, err
	}
	b := &model.Booking{
		SourceRequestID: req.ID,
		InstrumentID:    req.InstrumentID,
		RenterID:        req.RequesterID,
		OwnerID:         req.OwnerID,
		Period:          req.Period,
		TotalPriceCents: req.TotalPriceCents,
	}
	if err := cv.store.InsertBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
