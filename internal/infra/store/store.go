// Package store provides persistence for journey records.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/journeybox/internal/domain/journey"
)

// ErrJourneyNotFound is returned when a journey cannot be located.
var ErrJourneyNotFound = errors.New("journey not found")

// JourneyStore defines storage operations for journeys.
type JourneyStore interface {
	// Create persists a new journey and returns it with the assigned ID.
	Create(ctx context.Context, j *journey.Journey) (*journey.Journey, error)
	// Get returns the journey with the given ID, or ErrJourneyNotFound.
	Get(ctx context.Context, id int64) (*journey.Journey, error)
	// List returns every journey in insertion order.
	List(ctx context.Context) ([]*journey.Journey, error)
	// UpdateJourneyTime overwrites the stored duration estimate.
	UpdateJourneyTime(ctx context.Context, id int64, journeyTime time.Duration) error
	// SetPlaylist records the playlist URL and genre list for a journey.
	SetPlaylist(ctx context.Context, id int64, playlistURL string, genres []string) error
}
