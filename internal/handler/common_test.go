package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, ok := parsePeriod("2026-09-10", "2026-09-12")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), p.End)
}

func TestParsePeriodTrimsWhitespace(t *testing.T) {
	_, ok := parsePeriod("  2026-09-10 ", "2026-09-12\n")
	assert.True(t, ok)
}

func TestParsePeriodRejectsGarbage(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"2026-09-10", ""},
		{"10.09.2026", "12.09.2026"},
		{"2026-09-12", "2026-09-10"}, // inverted
		{"2026-13-01", "2026-13-02"}, // impossible month
	}
	for _, c := range cases {
		_, ok := parsePeriod(c[0], c[1])
		assert.Falsef(t, ok, "parsePeriod(%q, %q) should fail", c[0], c[1])
	}
}

func TestParsePeriodSingleDay(t *testing.T) {
	// A single day is a valid range at the parsing layer; whether it is
	// acceptable depends on the operation (manual blocks yes, requests no).
	p, ok := parsePeriod("2026-09-10", "2026-09-10")
	require.True(t, ok)
	assert.Equal(t, p.Start, p.End)
}

func TestFmtDate(t *testing.T) {
	assert.Equal(t, "2026-09-10", fmtDate(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)))
}
