package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"strings" // strings provides trimming helpers
	"time"    // time parses the date parameters used across handlers

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/instrumentaliza/instrumentaliza-server/internal/model" // model holds the date range type
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64: // when already uint64
		return t, nil // return directly
	case int: // when stored as int
		return uint64(t), nil // convert to uint64
	case int64: // when stored as int64
		return uint64(t), nil // convert to uint64
	case float64: // when stored as float64 (JWT numeric claims decode as float64)
		return uint64(t), nil // convert to uint64
	case string: // when stored as string
		if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
			return n, nil // return parsed number
		}
	} // end type switch
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// dateLayout is the wire format for all rental dates.  Periods are day
// granular, so only the calendar date travels over the API.
const dateLayout = "2006-01-02"

// parsePeriod parses start/end date strings into a normalized DateRange.
// It returns false when either date fails to parse or the range is
// inverted (end before start).
func parsePeriod(start, end string) (model.DateRange, bool) {
	s, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return model.DateRange{}, false
	}
	e, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return model.DateRange{}, false
	}
	return model.NewDateRange(s, e)
}

// fmtDate renders a period boundary back into the wire format.
func fmtDate(t time.Time) string { return t.Format(dateLayout) }
