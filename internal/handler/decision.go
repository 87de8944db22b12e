package handler

// decision.go holds the owner side of the rental request flow: listing the
// incoming requests for one's instruments and deciding them. Accepting a
// request immediately converts it into a booking and publishes a
// booking.created event for downstream consumers.

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
	"github.com/instrumentaliza/instrumentaliza-server/internal/queue"
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
	queue_publisher "github.com/instrumentaliza/instrumentaliza-server/internal/service"
)

// DecisionHandler bundles the dependencies for owner decisions.
type DecisionHandler struct {
	Lifecycle   *rental.Lifecycle
	Converter   *rental.Converter
	Store       *repository.RentalStore
	Instruments *repository.InstrumentRepo
}

func NewDecisionHandler(lc *rental.Lifecycle, cv *rental.Converter, store *repository.RentalStore, instruments *repository.InstrumentRepo) *DecisionHandler {
	if lc == nil || cv == nil || store == nil || instruments == nil {
		panic("nil dependency passed to NewDecisionHandler")
	}
	return &DecisionHandler{Lifecycle: lc, Converter: cv, Store: store, Instruments: instruments}
}

// requestJSON renders a rental request for API responses with the period
// in wire format.
func requestJSON(req *model.RentalRequest) echo.Map {
	out := echo.Map{
		"id":                  req.ID,
		"instrument_id":       req.InstrumentID,
		"requester_id":        req.RequesterID,
		"owner_id":            req.OwnerID,
		"start_date":          fmtDate(req.Period.Start),
		"end_date":            fmtDate(req.Period.End),
		"price_per_day_cents": req.PricePerDayCents,
		"total_price_cents":   req.TotalPriceCents,
		"status":              req.Status,
	}
	if req.Note != nil {
		out["note"] = *req.Note
	}
	if req.DecisionReason != nil {
		out["decision_reason"] = *req.DecisionReason
	}
	return out
}

// bookingJSON renders a booking for API responses.
func bookingJSON(b *model.Booking) echo.Map {
	return echo.Map{
		"id":                b.ID,
		"source_request_id": b.SourceRequestID,
		"instrument_id":     b.InstrumentID,
		"renter_id":         b.RenterID,
		"owner_id":          b.OwnerID,
		"start_date":        fmtDate(b.Period.Start),
		"end_date":          fmtDate(b.Period.End),
		"total_price_cents": b.TotalPriceCents,
	}
}

// ListIncoming handles GET /v1/requests/incoming and returns the requests
// made against the authenticated user's instruments, newest first. An
// optional status query parameter filters by state.
func (h *DecisionHandler) ListIncoming(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	items, err := h.Store.ListRequests(c.Request().Context(), 0, uid, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadOwned loads a request and verifies the caller owns the instrument.
// The error response is written here; a nil return means stop.
func (h *DecisionHandler) loadOwned(c echo.Context, id, uid uint64) *model.RentalRequest {
	req, err := h.Store.GetRequest(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, rental.ErrRequestNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return nil
	}
	if req.OwnerID != uid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
		return nil
	}
	return req
}

// Accept handles POST /v1/requests/:id/accept. The request moves to
// ACCEPTED and is converted into a booking in the same call. When the
// conversion loses the race against a concurrent booking of an overlapping
// period, the request stays ACCEPTED without a booking and the owner gets
// a 409 telling them to reconcile with the renter.
func (h *DecisionHandler) Accept(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	current := h.loadOwned(c, id, uid)
	if current == nil {
		return nil
	}
	// Cheap pre-check; the conditional update in the lifecycle is the
	// authoritative guard.
	if model.TerminalStatus(current.Status) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
	}
	ctx := c.Request().Context()

	req, err := h.Lifecycle.Accept(ctx, id)
	if err != nil {
		if errors.Is(err, rental.ErrNotPending) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "accept failed"})
	}

	booking, err := h.Converter.Convert(ctx, id)
	if err != nil {
		if errors.Is(err, rental.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":   "period was booked concurrently; request stays accepted without a booking",
				"request": requestJSON(req),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conversion failed"})
	}

	h.publishCreated(req, booking)

	return c.JSON(http.StatusOK, echo.Map{
		"request": requestJSON(req),
		"booking": bookingJSON(booking),
	})
}

// publishCreated emits the booking.created event in the background. A
// broker outage must not fail the acceptance; the publisher logs errors.
func (h *DecisionHandler) publishCreated(req *model.RentalRequest, b *model.Booking) {
	name := ""
	if inst, err := h.Instruments.GetByID(context.Background(), b.InstrumentID); err == nil {
		name = inst.Name
	}
	ev := queue.BookingCreatedEvent{
		BookingID:       b.ID,
		RequestID:       req.ID,
		InstrumentID:    b.InstrumentID,
		InstrumentName:  name,
		OwnerID:         b.OwnerID,
		RenterID:        b.RenterID,
		StartDate:       fmtDate(b.Period.Start),
		EndDate:         fmtDate(b.Period.End),
		TotalPriceCents: b.TotalPriceCents,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCreated(ctx, ev)
	}()
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// Reject handles POST /v1/requests/:id/reject. A reason of at least ten
// characters after trimming is mandatory so renters never see a bare "no".
func (h *DecisionHandler) Reject(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body rejectBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if h.loadOwned(c, id, uid) == nil {
		return nil
	}

	req, err := h.Lifecycle.Reject(c.Request().Context(), id, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, rental.ErrReasonTooShort):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason must be at least 10 characters"})
		case errors.Is(err, rental.ErrNotPending):
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
	}
	return c.JSON(http.StatusOK, requestJSON(req))
}
