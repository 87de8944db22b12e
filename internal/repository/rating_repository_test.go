package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentaliza/instrumentaliza-server/internal/model"
)

func newRating(bookingID uint64) *model.Rating {
	return &model.Rating{
		BookingID:    bookingID,
		RaterID:      20,
		RateeID:      10,
		InstrumentID: 3,
		Stars:        5,
	}
}

// A successful rating flips the rater's flag and inserts the row in one
// committed transaction.
func TestRatingCreateCommitsFlagAndRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET renter_rated = 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	rt := newRating(7)
	repo := NewRatingRepo(db)
	require.NoError(t, repo.Create(context.Background(), rt, false))
	assert.Equal(t, uint64(42), rt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The owner's rating touches owner_rated, not renter_rated.
func TestRatingCreateUsesOwnerFlag(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET owner_rated = 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()

	repo := NewRatingRepo(db)
	require.NoError(t, repo.Create(context.Background(), newRating(7), true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When the flag is already set the conditional update matches no row, the
// transaction rolls back and no rating row is ever written.
func TestRatingCreateSecondAttemptConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET renter_rated = 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewRatingRepo(db)
	err = repo.Create(context.Background(), newRating(7), false)
	assert.ErrorIs(t, err, ErrAlreadyRated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failing insert rolls the whole transaction back, so the one-shot flag
// is not left flipped without its rating row.
func TestRatingCreateRollsBackWhenInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET renter_rated = 1").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	repo := NewRatingRepo(db)
	err = repo.Create(context.Background(), newRating(7), false)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
