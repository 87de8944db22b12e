package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rng(s, e time.Time) DateRange { return DateRange{Start: s, End: e} }

func TestNewDateRangeValidity(t *testing.T) {
	_, ok := NewDateRange(day(2024, 3, 10), day(2024, 3, 12))
	assert.True(t, ok)

	// single day is a valid range (manual blocks use them)
	_, ok = NewDateRange(day(2024, 3, 11), day(2024, 3, 11))
	assert.True(t, ok)

	_, ok = NewDateRange(day(2024, 3, 12), day(2024, 3, 10))
	assert.False(t, ok)
}

func TestOverlapsSymmetricAndReflexive(t *testing.T) {
	cases := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{"disjoint", rng(day(2024, 3, 1), day(2024, 3, 5)), rng(day(2024, 3, 6), day(2024, 3, 9)), false},
		{"touching endpoints", rng(day(2024, 3, 10), day(2024, 3, 12)), rng(day(2024, 3, 12), day(2024, 3, 14)), true},
		{"contained", rng(day(2024, 3, 1), day(2024, 3, 31)), rng(day(2024, 3, 10), day(2024, 3, 12)), true},
		{"partial", rng(day(2024, 3, 10), day(2024, 3, 15)), rng(day(2024, 3, 14), day(2024, 3, 20)), true},
		{"adjacent days", rng(day(2024, 3, 10), day(2024, 3, 11)), rng(day(2024, 3, 12), day(2024, 3, 13)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
	// every valid range overlaps itself
	a := rng(day(2024, 3, 10), day(2024, 3, 12))
	assert.True(t, a.Overlaps(a))
	single := rng(day(2024, 3, 11), day(2024, 3, 11))
	assert.True(t, single.Overlaps(single))
}

func TestOverlapsNormalizesTimeOfDay(t *testing.T) {
	// raw timestamps with time-of-day noise must compare at day granularity
	a := rng(
		time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 12, 0, 0, 1, 0, time.UTC),
	)
	b := rng(
		time.Date(2024, 3, 12, 8, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
	)
	assert.True(t, a.Overlaps(b), "shared calendar day 03-12 must overlap regardless of clock time")

	// a non-UTC zone on the same calendar day must not shift the day
	loc := time.FixedZone("UTC+3", 3*3600)
	c := rng(
		time.Date(2024, 3, 12, 1, 0, 0, 0, loc), // 2024-03-11T22:00Z
		time.Date(2024, 3, 12, 23, 0, 0, 0, loc),
	)
	assert.Equal(t, day(2024, 3, 11), c.Normalize().Start)
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, int64(3), rng(day(2024, 3, 10), day(2024, 3, 12)).DaysInclusive())
	assert.Equal(t, int64(1), rng(day(2024, 3, 11), day(2024, 3, 11)).DaysInclusive())
	// across a month boundary
	assert.Equal(t, int64(2), rng(day(2024, 2, 29), day(2024, 3, 1)).DaysInclusive())
}

func TestEqualDedupesOnExactMatchOnly(t *testing.T) {
	a := rng(day(2024, 3, 10), day(2024, 3, 12))
	require.True(t, a.Equal(rng(
		time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
	)))
	assert.False(t, a.Equal(rng(day(2024, 3, 10), day(2024, 3, 13))))
}
