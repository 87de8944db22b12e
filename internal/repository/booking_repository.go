package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// BookingRepo reads bookings.  Booking creation goes through the
// RentalStore (conversion is the only writer) and the one-shot rating
// flags are flipped by RatingRepo.Create; this repository never writes.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// GetByID loads a booking.  ErrForbidden when userID is neither party,
// sql.ErrNoRows when the booking does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Booking, error) {
	b, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.RenterID != userID && b.OwnerID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (r *BookingRepo) get(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, source_request_id, instrument_id, renter_id, owner_id,
                      start_date, end_date, total_price_cents, renter_rated, owner_rated, created_at
               FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.SourceRequestID, &b.InstrumentID, &b.RenterID, &b.OwnerID,
		&b.Period.Start, &b.Period.End, &b.TotalPriceCents, &b.RenterRated, &b.OwnerRated, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Period = b.Period.Normalize()
	return &b, nil
}

// BookingDetail is a booking joined with instrument and counterpart names
// for listing.
type BookingDetail struct {
	ID              uint64 `json:"id"`
	SourceRequestID uint64 `json:"source_request_id"`
	InstrumentID    uint64 `json:"instrument_id"`
	InstrumentName  string `json:"instrument_name"`
	RenterID        uint64 `json:"renter_id"`
	RenterName      string `json:"renter_name"`
	OwnerID         uint64 `json:"owner_id"`
	OwnerName       string `json:"owner_name"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	RenterRated     bool   `json:"renter_rated"`
	OwnerRated      bool   `json:"owner_rated"`
	CreatedAt       string `json:"created_at"`
}

// ListForUser returns every booking where the user is renter or owner,
// newest first.
func (r *BookingRepo) ListForUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.source_request_id, b.instrument_id, i.name,
                      b.renter_id, ru.name, b.owner_id, ou.name,
                      b.start_date, b.end_date, b.total_price_cents,
                      b.renter_rated, b.owner_rated, b.created_at
               FROM bookings b
               JOIN instruments i ON i.id = b.instrument_id
               JOIN users ru ON ru.id = b.renter_id
               JOIN users ou ON ou.id = b.owner_id
               WHERE b.renter_id = ? OR b.owner_id = ?
               ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var start, end, created time.Time
		if err := rows.Scan(
			&d.ID, &d.SourceRequestID, &d.InstrumentID, &d.InstrumentName,
			&d.RenterID, &d.RenterName, &d.OwnerID, &d.OwnerName,
			&start, &end, &d.TotalPriceCents,
			&d.RenterRated, &d.OwnerRated, &created,
		); err != nil {
			return nil, err
		}
		d.StartDate = start.UTC().Format("2006-01-02")
		d.EndDate = end.UTC().Format("2006-01-02")
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
