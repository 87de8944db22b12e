package rental

import (
	"context"
	"sync"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// MemoryStore is an in-memory Store used by the package tests.  One mutex
// covers everything, which trivially satisfies the per-instrument
// serialization contract of AppendBookingRange and makes the conditional
// status update atomic.
type MemoryStore struct {
	mu        sync.Mutex
	nextRange uint64
	nextReq   uint64
	nextBook  uint64
	ranges    map[uint64][]model.UnavailableRange // instrumentID -> ranges
	requests  map[uint64]*model.RentalRequest
	bookings  map[uint64]*model.Booking
	bySource  map[uint64]uint64 // source request id -> booking id
}

// NewMemoryStore returns an empty MemoryStore.  Instruments do not need to
// be registered; an unknown instrument simply has no ranges.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ranges:   make(map[uint64][]model.UnavailableRange),
		requests: make(map[uint64]*model.RentalRequest),
		bookings: make(map[uint64]*model.Booking),
		bySource: make(map[uint64]uint64),
	}
}

func (s *MemoryStore) Ranges(ctx context.Context, instrumentID uint64) ([]model.UnavailableRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UnavailableRange, len(s.ranges[instrumentID]))
	copy(out, s.ranges[instrumentID])
	return out, nil
}

func (s *MemoryStore) AppendManualRange(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ur := range s.ranges[instrumentID] {
		if ur.Origin == model.OriginManual && ur.Range.Equal(r) {
			return nil // exact duplicate, idempotent
		}
	}
	s.nextRange++
	s.ranges[instrumentID] = append(s.ranges[instrumentID], model.UnavailableRange{
		ID:           s.nextRange,
		InstrumentID: instrumentID,
		Origin:       model.OriginManual,
		Range:        r,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) RemoveManualRange(ctx context.Context, instrumentID, rangeID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.ranges[instrumentID]
	for i, ur := range list {
		if ur.ID == rangeID && ur.Origin == model.OriginManual {
			s.ranges[instrumentID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil // already gone: no-op
}

func (s *MemoryStore) AppendBookingRange(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ur := range s.ranges[instrumentID] {
		if ur.Origin == model.OriginBooking && ur.Range.Overlaps(r) {
			return ErrConflict
		}
	}
	s.nextRange++
	s.ranges[instrumentID] = append(s.ranges[instrumentID], model.UnavailableRange{
		ID:           s.nextRange,
		InstrumentID: instrumentID,
		Origin:       model.OriginBooking,
		Range:        r,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) InsertRequest(ctx context.Context, req *model.RentalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReq++
	req.ID = s.nextReq
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id uint64) (*model.RentalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *MemoryStore) UpdateRequestStatus(ctx context.Context, id uint64, from, to string, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	req.DecisionReason = reason
	req.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) PendingStartedBefore(ctx context.Context, day time.Time) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint64
	for id, req := range s.requests {
		if req.Status == model.RequestPending && req.Period.Start.Before(day) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.bySource[b.SourceRequestID]; dup {
		return ErrConflict
	}
	s.nextBook++
	b.ID = s.nextBook
	b.CreatedAt = time.Now().UTC()
	cp := *b
	s.bookings[b.ID] = &cp
	s.bySource[b.SourceRequestID] = b.ID
	return nil
}
