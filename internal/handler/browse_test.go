package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentaliza/instrumentaliza-server/internal/rental"
	"github.com/instrumentaliza/instrumentaliza-server/internal/repository"
)

// The constructor rejects missing dependencies at startup instead of
// letting a nil surface as a panic on the first request.
func TestNewPublicHandlerRejectsNilDependencies(t *testing.T) {
	instruments := repository.NewInstrumentRepo(nil)
	ratings := repository.NewRatingRepo(nil)
	index := rental.NewAvailabilityIndex(rental.NewMemoryStore())

	assert.Panics(t, func() { NewPublicHandler(nil, ratings, index) })
	assert.Panics(t, func() { NewPublicHandler(instruments, nil, index) })
	assert.Panics(t, func() { NewPublicHandler(instruments, ratings, nil) })
}

func TestNewPublicHandlerWiresDependencies(t *testing.T) {
	instruments := repository.NewInstrumentRepo(nil)
	ratings := repository.NewRatingRepo(nil)
	index := rental.NewAvailabilityIndex(rental.NewMemoryStore())

	h := NewPublicHandler(instruments, ratings, index)
	require.NotNil(t, h)
	assert.Same(t, instruments, h.Instruments)
	assert.Same(t, ratings, h.Ratings)
	assert.Same(t, index, h.Index)
}
