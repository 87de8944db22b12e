package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
)

// RentalStore is the MySQL-backed implementation of rental.Store.  All
// date columns are DATE (day granularity, UTC); the driver's parseTime
// gives us time.Time values at midnight UTC so the domain's normalization
// is a no-op for stored ranges.
//
// Serialization: AppendBookingRange locks the instrument row with
// SELECT ... FOR UPDATE before the overlap check, so two conversions for
// the same instrument execute strictly one after the other while leaving
// other instruments untouched.
type RentalStore struct {
	db *sql.DB
}

// NewRentalStore returns a RentalStore bound to the given database.
func NewRentalStore(db *sql.DB) *RentalStore { return &RentalStore{db: db} }

// Ranges returns all blocked ranges of the instrument, both origins.
// rental.ErrInstrumentNotFound when the instrument does not exist.
func (s *RentalStore) Ranges(ctx context.Context, instrumentID uint64) ([]model.UnavailableRange, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM instruments WHERE id = ?`, instrumentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, rental.ErrInstrumentNotFound
	}
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, instrument_id, origin, start_date, end_date, created_at
               FROM unavailable_ranges
               WHERE instrument_id = ?
               ORDER BY start_date, id`
	rows, err := s.db.QueryContext(ctx, q, instrumentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ranges := make([]model.UnavailableRange, 0)
	for rows.Next() {
		var ur model.UnavailableRange
		var origin string
		if err := rows.Scan(&ur.ID, &ur.InstrumentID, &origin, &ur.Range.Start, &ur.Range.End, &ur.CreatedAt); err != nil {
			return nil, err
		}
		ur.Origin = model.RangeOrigin(origin)
		ur.Range = ur.Range.Normalize()
		ranges = append(ranges, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranges, nil
}

// AppendManualRange inserts a MANUAL range unless an identical one already
// exists.  The NOT EXISTS guard makes a doubled submission idempotent in a
// single statement.
func (s *RentalStore) AppendManualRange(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	const q = `INSERT INTO unavailable_ranges (instrument_id, origin, start_date, end_date)
               SELECT ?, 'MANUAL', ?, ?
               FROM DUAL
               WHERE NOT EXISTS (
                   SELECT 1 FROM unavailable_ranges
                   WHERE instrument_id = ? AND origin = 'MANUAL' AND start_date = ? AND end_date = ?
               )`
	start := dateArg(r.Start)
	end := dateArg(r.End)
	_, err := s.db.ExecContext(ctx, q, instrumentID, start, end, instrumentID, start, end)
	return err
}

// RemoveManualRange deletes one MANUAL range.  A vanished id is a no-op;
// BOOKING ranges never match the origin filter and so cannot be removed
// through this path.
func (s *RentalStore) RemoveManualRange(ctx context.Context, instrumentID, rangeID uint64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM unavailable_ranges WHERE id = ? AND instrument_id = ? AND origin = 'MANUAL'`,
		rangeID, instrumentID)
	return err
}

// AppendBookingRange commits a BOOKING range after a conflict check
// against existing BOOKING ranges, all inside one transaction holding the
// instrument's row lock.
func (s *RentalStore) AppendBookingRange(ctx context.Context, instrumentID uint64, r model.DateRange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the instrument row; this is the per-instrument serialization
	// point for every conversion.
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM instruments WHERE id = ? FOR UPDATE`, instrumentID).Scan(&locked)
	if err == sql.ErrNoRows {
		return rental.ErrInstrumentNotFound
	}
	if err != nil {
		return err
	}

	// Inclusive overlap: existing.start <= new.end AND new.start <= existing.end.
	var conflicting uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM unavailable_ranges
         WHERE instrument_id = ? AND origin = 'BOOKING' AND start_date <= ? AND end_date >= ?
         LIMIT 1`,
		instrumentID, dateArg(r.End), dateArg(r.Start)).Scan(&conflicting)
	if err == nil {
		return rental.ErrConflict
	}
	if err != sql.ErrNoRows {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO unavailable_ranges (instrument_id, origin, start_date, end_date) VALUES (?, 'BOOKING', ?, ?)`,
		instrumentID, dateArg(r.Start), dateArg(r.End)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// InsertRequest persists a new PENDING request and reads back the row to
// populate the generated id and timestamps.
func (s *RentalStore) InsertRequest(ctx context.Context, req *model.RentalRequest) error {
	const q = `INSERT INTO rental_requests
               (instrument_id, requester_id, owner_id, start_date, end_date,
                price_per_day_cents, total_price_cents, note, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		req.InstrumentID, req.RequesterID, req.OwnerID,
		dateArg(req.Period.Start), dateArg(req.Period.End),
		req.PricePerDayCents, req.TotalPriceCents, req.Note, req.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	loaded, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		return err
	}
	*req = *loaded
	return nil
}

// GetRequest loads a request by id.
func (s *RentalStore) GetRequest(ctx context.Context, id uint64) (*model.RentalRequest, error) {
	const q = `SELECT id, instrument_id, requester_id, owner_id, start_date, end_date,
                      price_per_day_cents, total_price_cents, note, status, decision_reason,
                      created_at, updated_at
               FROM rental_requests WHERE id = ?`
	var req model.RentalRequest
	var note, reason sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.InstrumentID, &req.RequesterID, &req.OwnerID,
		&req.Period.Start, &req.Period.End,
		&req.PricePerDayCents, &req.TotalPriceCents, &note, &req.Status, &reason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, rental.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	req.Period = req.Period.Normalize()
	if note.Valid {
		n := note.String
		req.Note = &n
	}
	if reason.Valid {
		rs := reason.String
		req.DecisionReason = &rs
	}
	return &req, nil
}

// UpdateRequestStatus performs the conditional transition write.  Zero
// rows affected means the request was not in `from` anymore (or never
// existed); the caller decides which.
func (s *RentalStore) UpdateRequestStatus(ctx context.Context, id uint64, from, to string, reason *string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rental_requests SET status = ?, decision_reason = ? WHERE id = ? AND status = ?`,
		to, reason, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PendingStartedBefore returns ids of PENDING requests whose start date is
// strictly before the given day.  Fed to the expiry sweep.
func (s *RentalStore) PendingStartedBefore(ctx context.Context, day time.Time) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM rental_requests WHERE status = 'PENDING' AND start_date < ?`,
		dateArg(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertBooking persists a booking.  The unique key on source_request_id
// turns a double conversion into rental.ErrConflict.
func (s *RentalStore) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (source_request_id, instrument_id, renter_id, owner_id, start_date, end_date, total_price_cents)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		b.SourceRequestID, b.InstrumentID, b.RenterID, b.OwnerID,
		dateArg(b.Period.Start), dateArg(b.Period.End), b.TotalPriceCents)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return rental.ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	err = s.db.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
	return err
}

// RequestDetail is a request joined with its instrument name for listing
// to either party.
type RequestDetail struct {
	ID               uint64  `json:"id"`
	InstrumentID     uint64  `json:"instrument_id"`
	InstrumentName   string  `json:"instrument_name"`
	RequesterID      uint64  `json:"requester_id"`
	RequesterName    string  `json:"requester_name"`
	OwnerID          uint64  `json:"owner_id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	PricePerDayCents uint32  `json:"price_per_day_cents"`
	TotalPriceCents  uint64  `json:"total_price_cents"`
	Note             *string `json:"note,omitempty"`
	Status           string  `json:"status"`
	DecisionReason   *string `json:"decision_reason,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// ListRequests returns request details for one side of the marketplace.
// Pass the user id in exactly one of requesterID/ownerID (the other zero).
// An optional status filters the list.  Newest first.
func (s *RentalStore) ListRequests(ctx context.Context, requesterID, ownerID uint64, status string) ([]RequestDetail, error) {
	q := `SELECT r.id, r.instrument_id, i.name, r.requester_id, u.name, r.owner_id,
                 r.start_date, r.end_date, r.price_per_day_cents, r.total_price_cents,
                 r.note, r.status, r.decision_reason, r.created_at
          FROM rental_requests r
          JOIN instruments i ON i.id = r.instrument_id
          JOIN users u ON u.id = r.requester_id
          WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if requesterID != 0 {
		q += ` AND r.requester_id = ?`
		args = append(args, requesterID)
	}
	if ownerID != 0 {
		q += ` AND r.owner_id = ?`
		args = append(args, ownerID)
	}
	if status != "" {
		q += ` AND r.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY r.created_at DESC, r.id DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RequestDetail, 0)
	for rows.Next() {
		var d RequestDetail
		var start, end, created time.Time
		var note, reason sql.NullString
		if err := rows.Scan(
			&d.ID, &d.InstrumentID, &d.InstrumentName, &d.RequesterID, &d.RequesterName, &d.OwnerID,
			&start, &end, &d.PricePerDayCents, &d.TotalPriceCents,
			&note, &d.Status, &reason, &created,
		); err != nil {
			return nil, err
		}
		d.StartDate = start.UTC().Format("2006-01-02")
		d.EndDate = end.UTC().Format("2006-01-02")
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		if note.Valid {
			n := note.String
			d.Note = &n
		}
		if reason.Valid {
			rs := reason.String
			d.DecisionReason = &rs
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// dateArg formats a day-granularity value for a DATE column.
func dateArg(t time.Time) string {
	return model.StartOfDay(t).Format("2006-01-02")
}
