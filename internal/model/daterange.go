package model

import "time"

// RangeOrigin tags where an unavailable range came from.  MANUAL ranges
// are declared by the instrument owner; BOOKING ranges are derived from a
// confirmed booking and may never overlap one another.
type RangeOrigin string

const (
	OriginManual  RangeOrigin = "MANUAL"
	OriginBooking RangeOrigin = "BOOKING"
)

// DateRange is an inclusive day-granularity interval [Start, End].  Both
// endpoints are normalized to UTC start of day before any comparison so
// that time-of-day or timezone noise in the inputs can never produce a
// false negative on an overlap test.  A DateRange with End before Start
// (after normalization) is invalid.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartOfDay truncates t to midnight UTC.  All day-granularity comparisons
// in this package go through this function.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDateRange normalizes both endpoints and reports whether the result is
// a valid range (Start <= End).  Callers should discard the returned range
// when ok is false.
func NewDateRange(start, end time.Time) (DateRange, bool) {
	r := DateRange{Start: StartOfDay(start), End: StartOfDay(end)}
	return r, !r.End.Before(r.Start)
}

// Normalize returns the range with both endpoints truncated to UTC
// midnight.  Ranges loaded from the database are already normalized; this
// exists for ranges built directly from client input.
func (r DateRange) Normalize() DateRange {
	return DateRange{Start: StartOfDay(r.Start), End: StartOfDay(r.End)}
}

// Overlaps reports whether two inclusive ranges share at least one day:
// r.Start <= o.End && o.Start <= r.End.  The test is symmetric and every
// valid range overlaps itself.
func (r DateRange) Overlaps(o DateRange) bool {
	r = r.Normalize()
	o = o.Normalize()
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// Equal reports exact equality of the normalized endpoints.  Used to dedupe
// manual blocks submitted twice.
func (r DateRange) Equal(o DateRange) bool {
	r = r.Normalize()
	o = o.Normalize()
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// DaysInclusive returns the number of calendar days covered by the range,
// counting both endpoints.  [2024-03-10, 2024-03-12] spans 3 days.
func (r DateRange) DaysInclusive() int64 {
	r = r.Normalize()
	return int64(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

// UnavailableRange is one blocked interval of an instrument's calendar as
// stored in the unavailable_ranges table.
//
// Fields:
//  ID           – primary key identifier.
//  InstrumentID – instrument whose calendar is blocked.
//  Origin       – MANUAL (owner-declared) or BOOKING (derived).
//  Range        – the blocked interval.
//  CreatedAt    – creation timestamp.
type UnavailableRange struct {
	ID           uint64      // unavailable_ranges.id
	InstrumentID uint64      // unavailable_ranges.instrument_id
	Origin       RangeOrigin // unavailable_ranges.origin
	Range        DateRange   // unavailable_ranges.start_date / end_date
	CreatedAt    time.Time   // unavailable_ranges.created_at
}
