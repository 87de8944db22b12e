package handler

// request.go holds the renter side of the rental request flow: creating a
// request against a listing and reviewing one's own requests. The owner's
// decision endpoints live in decision.go.

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
)

// RequestHandler bundles the dependencies for the rental request flow.
type RequestHandler struct {
	Lifecycle   *rental.Lifecycle
	Instruments *repository.InstrumentRepo
	Store       *repository.RentalStore
}

func NewRequestHandler(lc *rental.Lifecycle, instruments *repository.InstrumentRepo, store *repository.RentalStore) *RequestHandler {
	if lc == nil || instruments == nil || store == nil {
		panic("nil dependency passed to NewRequestHandler")
	}
	return &RequestHandler{Lifecycle: lc, Instruments: instruments, Store: store}
}

type createRequestBody struct {
	InstrumentID uint64  `json:"instrument_id"`
	StartDate    string  `json:"start_date"` // inclusive, YYYY-MM-DD
	EndDate      string  `json:"end_date"`   // inclusive, YYYY-MM-DD
	Note         *string `json:"note"`
}

// CreateRequest handles POST /v1/requests. The period must span at least
// two days (end after start), the listing must be active, not owned by the
// requester and free for the whole period. The price is captured from the
// listing at creation time so later price edits never move an open request.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	period, ok := parsePeriod(body.StartDate, body.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date/end_date must be YYYY-MM-DD with end >= start"})
	}
	if body.Note != nil {
		n := strings.TrimSpace(*body.Note)
		if n == "" {
			body.Note = nil
		} else {
			body.Note = &n
		}
	}

	ctx := c.Request().Context()
	inst, err := h.Instruments.GetByID(ctx, body.InstrumentID)
	if err != nil {
		if errors.Is(err, rental.ErrInstrumentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "instrument not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !inst.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "instrument not found"})
	}

	req, err := h.Lifecycle.Create(ctx, inst.ID, uid, inst.OwnerID, period, inst.PricePerDayCents, body.Note)
	if err != nil {
		switch {
		case errors.Is(err, rental.ErrSelfRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot rent your own instrument"})
		case errors.Is(err, rental.ErrInvalidPeriod):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rental period must span at least one night"})
		case errors.Is(err, rental.ErrUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "instrument unavailable for this period"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create request"})
	}
	return c.JSON(http.StatusCreated, requestJSON(req))
}

// ListMyRequests handles GET /v1/requests and returns the requests the
// authenticated user has made, newest first. An optional status query
// parameter filters by state.
func (h *RequestHandler) ListMyRequests(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	items, err := h.Store.ListRequests(c.Request().Context(), uid, 0, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRequest handles GET /v1/requests/:id. Only the requester and the
// instrument owner may read a request.
func (h *RequestHandler) GetRequest(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	req, err := h.Store.GetRequest(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, rental.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if req.RequesterID != uid && req.OwnerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
	}
	return c.JSON(http.StatusOK, requestJSON(req))
}
