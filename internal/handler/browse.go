// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to discover instrument listings, inspect one listing
// with its ratings and check availability for a concrete period. Sensitive
// fields are filtered from responses; blocked calendars are only exposed as
// a yes/no availability answer, never as the owner's raw block list.

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
)

// PublicHandler aggregates the dependencies needed for unauthenticated
// browsing. It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	Instruments *repository.InstrumentRepo
	Ratings     *repository.RatingRepo
	Index       *rental.AvailabilityIndex
}

func NewPublicHandler(instruments *repository.InstrumentRepo, ratings *repository.RatingRepo, index *rental.AvailabilityIndex) *PublicHandler {
	if instruments == nil || ratings == nil || index == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Instruments: instruments, Ratings: ratings, Index: index}
}

// PublicInstrument is a listing exposed via the public API. It carries only
// safe fields; the owner appears as an opaque id for rating lookups.
type PublicInstrument struct {
	ID               uint64  `json:"id"`
	OwnerID          uint64  `json:"owner_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Description      *string `json:"description,omitempty"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	Location         *string `json:"location,omitempty"`
}

func publicInstrument(in model.Instrument) PublicInstrument {
	return PublicInstrument{
		ID:               in.ID,
		OwnerID:          in.OwnerID,
		Name:             in.Name,
		Category:         in.Category,
		Description:      in.Description,
		PricePerDayCents: in.PricePerDayCents,
		Location:         in.Location,
	}
}

// SearchInstruments handles GET /v1/browse/instruments. Query parameters:
// q (name/description), category, location, max_price_cents, limit, offset.
// Only active listings are returned.
func (h *PublicHandler) SearchInstruments(c echo.Context) error {
	f := repository.SearchFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Location: c.QueryParam("location"),
	}
	if v := c.QueryParam("max_price_cents"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price_cents"})
		}
		f.MaxPriceCents = uint32(n)
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Offset = n
		}
	}
	items, err := h.Instruments.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]PublicInstrument, 0, len(items))
	for _, in := range items {
		out = append(out, publicInstrument(in))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetInstrument handles GET /v1/browse/instruments/:id and returns one
// listing with its ratings and the owner's overall average.
func (h *PublicHandler) GetInstrument(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	inst, err := h.Instruments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rental.ErrInstrumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "instrument not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !inst.IsActive {
		// Inactive listings are invisible to the public surface.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "instrument not found"})
	}
	ratings, err := h.Ratings.ListForInstrument(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	avg, count, err := h.Ratings.AverageForUser(ctx, inst.OwnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"instrument":         publicInstrument(*inst),
		"ratings":            ratings,
		"owner_rating_avg":   avg,
		"owner_rating_count": count,
	})
}

// GetUserRatings handles GET /v1/browse/users/:id/ratings and returns the
// reputation of one marketplace user: the ratings they received from both
// sides plus their average.
func (h *PublicHandler) GetUserRatings(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	ratings, err := h.Ratings.ListForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	avg, count, err := h.Ratings.AverageForUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":      id,
		"ratings":      ratings,
		"rating_avg":   avg,
		"rating_count": count,
	})
}

// CheckAvailability handles GET /v1/browse/instruments/:id/availability.
// Query parameters start and end (YYYY-MM-DD, inclusive) describe the
// period. The response is a bare availability verdict.
func (h *PublicHandler) CheckAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	period, ok := parsePeriod(c.QueryParam("start"), c.QueryParam("end"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start/end must be YYYY-MM-DD with end >= start"})
	}
	free, err := h.Index.IsAvailable(c.Request().Context(), id, period)
	if err != nil {
		if errors.Is(err, rental.ErrInstrumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "instrument not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"instrument_id": id,
		"start_date":    fmtDate(period.Start),
		"end_date":      fmtDate(period.End),
		"available":     free,
	})
}
