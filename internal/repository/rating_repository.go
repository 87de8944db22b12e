package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

// RatingRepo stores post-rental reviews and aggregates them per user and
// per instrument.
type RatingRepo struct {
	db *sql.DB
}

// NewRatingRepo returns a RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts a rating row and flips the rater's one-shot flag on the
// booking in the same transaction, so a crash between the two writes can
// never leave a flipped flag without its rating.  The conditional UPDATE
// (WHERE flag = 0) makes a second attempt return ErrAlreadyRated.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating, asOwner bool) error {
	col := "renter_rated"
	if asOwner {
		col = "owner_rated"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET `+col+` = 1 WHERE id = ? AND `+col+` = 0`, rt.BookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyRated
	}

	const q = `INSERT INTO ratings (booking_id, rater_id, ratee_id, instrument_id, stars, comment)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err = tx.ExecContext(ctx, q,
		rt.BookingID, rt.RaterID, rt.RateeID, rt.InstrumentID, rt.Stars, rt.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	rt.ID = uint64(id)
	return nil
}

// RatingView is a rating with the rater's display name.
type RatingView struct {
	ID        uint64  `json:"id"`
	BookingID uint64  `json:"booking_id"`
	RaterID   uint64  `json:"rater_id"`
	RaterName string  `json:"rater_name"`
	Stars     uint8   `json:"stars"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ListForUser returns ratings received by a user, newest first.
func (r *RatingRepo) ListForUser(ctx context.Context, userID uint64) ([]RatingView, error) {
	const q = `SELECT rt.id, rt.booking_id, rt.rater_id, u.name, rt.stars, rt.comment, rt.created_at
               FROM ratings rt
               JOIN users u ON u.id = rt.rater_id
               WHERE rt.ratee_id = ?
               ORDER BY rt.created_at DESC, rt.id DESC`
	return r.scanViews(ctx, q, userID)
}

// ListForInstrument returns ratings left by renters for an instrument.
func (r *RatingRepo) ListForInstrument(ctx context.Context, instrumentID uint64) ([]RatingView, error) {
	const q = `SELECT rt.id, rt.booking_id, rt.rater_id, u.name, rt.stars, rt.comment, rt.created_at
               FROM ratings rt
               JOIN users u ON u.id = rt.rater_id
               WHERE rt.instrument_id = ? AND rt.rater_id <> (SELECT owner_id FROM instruments WHERE id = rt.instrument_id)
               ORDER BY rt.created_at DESC, rt.id DESC`
	return r.scanViews(ctx, q, instrumentID)
}

// AverageForUser returns the mean stars received by a user and the count.
// Zero count means no ratings yet.
func (r *RatingRepo) AverageForUser(ctx context.Context, userID uint64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(stars), COUNT(*) FROM ratings WHERE ratee_id = ?`, userID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	if !avg.Valid {
		return 0, 0, nil
	}
	return avg.Float64, count, nil
}

func (r *RatingRepo) scanViews(ctx context.Context, q string, args ...interface{}) ([]RatingView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]RatingView, 0)
	for rows.Next() {
		var v RatingView
		var comment sql.NullString
		var created time.Time
		if err := rows.Scan(&v.ID, &v.BookingID, &v.RaterID, &v.RaterName, &v.Stars, &comment, &created); err != nil {
			return nil, err
		}
		if comment.Valid {
			c := comment.String
			v.Comment = &c
		}
		v.CreatedAt = created.UTC().Format(time.RFC3339)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}
