package handler

// booking.go exposes confirmed bookings to both parties and the one-shot
// post-rental rating exchange. Each side of a booking may rate the other
// exactly once; the flags on the booking row make a second attempt fail.

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
)

// BookingHandler bundles booking and rating persistence.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Ratings  *repository.RatingRepo
}

func NewBookingHandler(bookings *repository.BookingRepo, ratings *repository.RatingRepo) *BookingHandler {
	if bookings == nil || ratings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Ratings: ratings}
}

// ListMyBookings handles GET /v1/bookings and returns every booking where
// the authenticated user is renter or owner, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id. Only the two parties may read
// a booking.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id, uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := bookingJSON(b)
	out["renter_rated"] = b.RenterRated
	out["owner_rated"] = b.OwnerRated
	return c.JSON(http.StatusOK, out)
}

type rateBody struct {
	Stars   uint8   `json:"stars"`
	Comment *string `json:"comment"`
}

// RateBooking handles POST /v1/bookings/:id/rate. The renter rates the
// owner and vice versa; the ratee is always the opposite party of the
// booking, never chosen by the client.
func (h *BookingHandler) RateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body rateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Stars < 1 || body.Stars > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stars must be between 1 and 5"})
	}
	if body.Comment != nil {
		t := strings.TrimSpace(*body.Comment)
		if t == "" {
			body.Comment = nil
		} else {
			body.Comment = &t
		}
	}

	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	asOwner := uid == b.OwnerID
	ratee := b.OwnerID
	if asOwner {
		ratee = b.RenterID
	}

	rt := &model.Rating{
		BookingID:    b.ID,
		RaterID:      uid,
		RateeID:      ratee,
		InstrumentID: b.InstrumentID,
		Stars:        body.Stars,
		Comment:      body.Comment,
	}
	// One transaction flips the one-shot flag and writes the rating row, so
	// a double submission conflicts and a failed insert leaves the flag
	// untouched.
	if err := h.Ratings.Create(ctx, rt, asOwner); err != nil {
		if errors.Is(err, repository.ErrAlreadyRated) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already rated this booking"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rating failed"})
	}
	return c.JSON(http.StatusCreated, rt)
}
