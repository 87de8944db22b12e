package handler // handler package contains owner-specific listing handlers

import (
	"errors"   // errors.Is for sentinel checks
	"net/http" // http provides status code constants
	"strconv"  // strconv parses string identifiers to numeric types
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"      // model holds domain structs
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"     // rental provides the availability index
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository" // repository holds database access
)

// OwnerHandler bundles the dependencies owners need to manage their
// listings and availability calendars.
type OwnerHandler struct {
	Instruments *repository.InstrumentRepo // listing persistence
	Index       *rental.AvailabilityIndex  // blocked-range calendar per instrument
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil
func NewOwnerHandler(instruments *repository.InstrumentRepo, index *rental.AvailabilityIndex) *OwnerHandler {
	if instruments == nil || index == nil {
		panic("nil dependency passed to NewOwnerHandler")
	}
	return &OwnerHandler{Instruments: instruments, Index: index}
}

// instrumentBody is the JSON payload for creating or updating a listing.
type instrumentBody struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Description      *string `json:"description"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	Location         *string `json:"location"`
	IsActive         *bool   `json:"is_active"`
}

// CreateInstrument handles POST /v1/instruments and creates a new listing for the authenticated owner
func (h *OwnerHandler) CreateInstrument(c echo.Context) error {
	ownerID, err := getUserID(c) // extract the owner ID from context
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body instrumentBody
	if err := c.Bind(&body); err != nil { // attempt to bind the request body
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	category := strings.ToUpper(strings.TrimSpace(body.Category))
	if name == "" || category == "" { // both identity fields are required
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and category are required"})
	}
	if body.PricePerDayCents == 0 { // a listing must carry a price
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "price_per_day_cents must be positive"})
	}
	inst := &model.Instrument{
		OwnerID:          ownerID,
		Name:             name,
		Category:         category,
		Description:      body.Description,
		PricePerDayCents: body.PricePerDayCents,
		Location:         body.Location,
		IsActive:         true, // new listings start visible
	}
	if body.IsActive != nil {
		inst.IsActive = *body.IsActive
	}
	if err := h.Instruments.Create(c.Request().Context(), inst); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create instrument"})
	}
	return c.JSON(http.StatusCreated, inst) // return 201 and the created listing on success
}

// UpdateInstrument handles PUT /v1/instruments/:id and rewrites the mutable listing fields
func (h *OwnerHandler) UpdateInstrument(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64) // parse the instrument ID from the URL
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body instrumentBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	category := strings.ToUpper(strings.TrimSpace(body.Category))
	if name == "" || category == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and category are required"})
	}
	if body.PricePerDayCents == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "price_per_day_cents must be positive"})
	}
	inst := &model.Instrument{
		ID:               id,
		Name:             name,
		Category:         category,
		Description:      body.Description,
		PricePerDayCents: body.PricePerDayCents,
		Location:         body.Location,
		IsActive:         true,
	}
	if body.IsActive != nil {
		inst.IsActive = *body.IsActive
	}
	if err := h.Instruments.Update(c.Request().Context(), inst, ownerID); err != nil {
		switch {
		case errors.Is(err, rental.ErrInstrumentNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "instrument not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "not your instrument"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}
	updated, _ := h.Instruments.GetByID(c.Request().Context(), id) // fetch the updated record
	return c.JSON(http.StatusOK, updated)
}

// DeleteInstrument handles DELETE /v1/instruments/:id.  Listings that have
// bookings cannot be deleted because the calendar history must survive.
func (h *OwnerHandler) DeleteInstrument(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Instruments.Delete(c.Request().Context(), id, ownerID); err != nil {
		switch {
		case errors.Is(err, rental.ErrInstrumentNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "instrument not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, map[string]string{"error": "not your instrument"})
		case errors.Is(err, repository.ErrHasBookings):
			return c.JSON(http.StatusConflict, map[string]string{"error": "instrument has bookings; deactivate it instead"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyInstruments handles GET /v1/instruments and returns all listings owned by the authenticated user
func (h *OwnerHandler) ListMyInstruments(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	items, err := h.Instruments.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items}) // return the list wrapped in a JSON object
}

// blockBody is the JSON payload for adding a manual availability block.
type blockBody struct {
	StartDate string `json:"start_date"` // inclusive, YYYY-MM-DD
	EndDate   string `json:"end_date"`   // inclusive, YYYY-MM-DD
}

// ownInstrument loads the instrument and verifies ownership.  It writes
// the error response itself and returns false when the caller should stop.
func (h *OwnerHandler) ownInstrument(c echo.Context, id, ownerID uint64) bool {
	inst, err := h.Instruments.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, rental.ErrInstrumentNotFound) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": "instrument not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return false
	}
	if inst.OwnerID != ownerID {
		_ = c.JSON(http.StatusForbidden, map[string]string{"error": "not your instrument"})
		return false
	}
	return true
}

// AddBlock handles POST /v1/instruments/:id/blocks and marks a period as
// manually unavailable.  A single-day block (start == end) is allowed.
func (h *OwnerHandler) AddBlock(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body blockBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	period, ok := parsePeriod(body.StartDate, body.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date/end_date must be YYYY-MM-DD with end >= start"})
	}
	if !h.ownInstrument(c, id, ownerID) {
		return nil
	}
	if err := h.Index.AddManualBlock(c.Request().Context(), id, period); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not add block"})
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"start_date": fmtDate(period.Start),
		"end_date":   fmtDate(period.End),
	})
}

// RemoveBlock handles DELETE /v1/instruments/:id/blocks/:blockID.  Only
// manual blocks can be removed; booking blocks are permanent.  Removing an
// absent or non-manual block is a silent no-op.
func (h *OwnerHandler) RemoveBlock(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	blockID, err := strconv.ParseUint(c.Param("blockID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid block id"})
	}
	if !h.ownInstrument(c, id, ownerID) {
		return nil
	}
	if err := h.Index.RemoveManualBlock(c.Request().Context(), id, blockID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not remove block"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBlocks handles GET /v1/instruments/:id/blocks and returns the full
// calendar of the listing including booking blocks.
func (h *OwnerHandler) ListBlocks(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if !h.ownInstrument(c, id, ownerID) {
		return nil
	}
	blocks, err := h.Index.Blocks(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	items := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		items = append(items, map[string]any{
			"id":         b.ID,
			"origin":     b.Origin,
			"start_date": fmtDate(b.Range.Start),
			"end_date":   fmtDate(b.Range.End),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
