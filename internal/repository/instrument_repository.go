package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
)

// InstrumentRepo provides CRUD and search over the instruments table.
// Ownership checks live here so handlers only translate errors: writes by
// anyone but the listing owner fail with ErrForbidden.
type InstrumentRepo struct {
	db *sql.DB
}

// NewInstrumentRepo returns an InstrumentRepo bound to the given database.
func NewInstrumentRepo(db *sql.DB) *InstrumentRepo { return &InstrumentRepo{db: db} }

// Create inserts a listing and populates the generated id and timestamps.
func (r *InstrumentRepo) Create(ctx context.Context, inst *model.Instrument) error {
	const q = `INSERT INTO instruments (owner_id, name, category, description, price_per_day_cents, location)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		inst.OwnerID, inst.Name, inst.Category, inst.Description, inst.PricePerDayCents, inst.Location)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	inst.ID = uint64(id)
	loaded, err := r.GetByID(ctx, inst.ID)
	if err != nil {
		return err
	}
	*inst = *loaded
	return nil
}

// GetByID loads one instrument.  rental.ErrInstrumentNotFound when absent.
func (r *InstrumentRepo) GetByID(ctx context.Context, id uint64) (*model.Instrument, error) {
	const q = `SELECT id, owner_id, name, category, description, price_per_day_cents, location,
                      is_active, created_at, updated_at
               FROM instruments WHERE id = ?`
	var inst model.Instrument
	var desc, loc sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&inst.ID, &inst.OwnerID, &inst.Name, &inst.Category, &desc, &inst.PricePerDayCents, &loc,
		&inst.IsActive, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, rental.ErrInstrumentNotFound
	}
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		inst.Description = &d
	}
	if loc.Valid {
		l := loc.String
		inst.Location = &l
	}
	return &inst, nil
}

// Update rewrites the mutable listing fields.  ErrForbidden when ownerID
// does not own the listing, rental.ErrInstrumentNotFound when it is gone.
func (r *InstrumentRepo) Update(ctx context.Context, inst *model.Instrument, ownerID uint64) error {
	current, err := r.GetByID(ctx, inst.ID)
	if err != nil {
		return err
	}
	if current.OwnerID != ownerID {
		return ErrForbidden
	}
	const q = `UPDATE instruments
               SET name = ?, category = ?, description = ?, price_per_day_cents = ?, location = ?, is_active = ?
               WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q,
		inst.Name, inst.Category, inst.Description, inst.PricePerDayCents, inst.Location, inst.IsActive, inst.ID)
	return err
}

// Delete removes a listing.  ErrForbidden for non-owners, ErrHasBookings
// when bookings reference it (the calendar history must survive).
func (r *InstrumentRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != ownerID {
		return ErrForbidden
	}
	var booked int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE instrument_id = ? LIMIT 1`, id).Scan(&booked)
	if err == nil {
		return ErrHasBookings
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM instruments WHERE id = ?`, id)
	return err
}

// ListByOwner returns all listings of one owner, newest first.
func (r *InstrumentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Instrument, error) {
	const q = `SELECT id, owner_id, name, category, description, price_per_day_cents, location,
                      is_active, created_at, updated_at
               FROM instruments WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	return r.scanList(ctx, q, ownerID)
}

// SearchFilter narrows the public instrument search.  Zero values mean
// "no constraint"; Query matches name and description with LIKE.
type SearchFilter struct {
	Query         string
	Category      string
	Location      string
	MaxPriceCents uint32
	Limit         int
	Offset        int
}

// Search returns active listings matching the filter.  The WHERE clause is
// assembled the same way the filter list grows, one condition per set
// field.
func (r *InstrumentRepo) Search(ctx context.Context, f SearchFilter) ([]model.Instrument, error) {
	q := `SELECT id, owner_id, name, category, description, price_per_day_cents, location,
                 is_active, created_at, updated_at
          FROM instruments WHERE is_active = 1`
	args := make([]interface{}, 0, 6)
	if f.Query != "" {
		q += ` AND (name LIKE ? OR description LIKE ?)`
		like := "%" + strings.TrimSpace(f.Query) + "%"
		args = append(args, like, like)
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, strings.ToUpper(strings.TrimSpace(f.Category)))
	}
	if f.Location != "" {
		q += ` AND location LIKE ?`
		args = append(args, "%"+strings.TrimSpace(f.Location)+"%")
	}
	if f.MaxPriceCents > 0 {
		q += ` AND price_per_day_cents <= ?`
		args = append(args, f.MaxPriceCents)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)
	return r.scanList(ctx, q, args...)
}

func (r *InstrumentRepo) scanList(ctx context.Context, q string, args ...interface{}) ([]model.Instrument, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Instrument, 0)
	for rows.Next() {
		var inst model.Instrument
		var desc, loc sql.NullString
		if err := rows.Scan(
			&inst.ID, &inst.OwnerID, &inst.Name, &inst.Category, &desc, &inst.PricePerDayCents, &loc,
			&inst.IsActive, &inst.CreatedAt, &inst.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			inst.Description = &d
		}
		if loc.Valid {
			l := loc.String
			inst.Location = &l
		}
		list = append(list, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
