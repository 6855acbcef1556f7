// Package assembly implements greedy duration-fill track selection.
//
// Tracks are taken genre by genre in provider relevance order until the
// accumulated duration covers the target. The same procedure fills a playlist
// at creation time (starting from zero) and tops up an existing playlist
// (starting from its current duration).
package assembly

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/journeybox/internal/domain/track"
)

// TrackSearcher searches tracks for a genre in provider relevance order.
type TrackSearcher interface {
	SearchTracksByGenre(ctx context.Context, genre string, limit int) ([]track.Track, error)
}

// Selection is the result of a fill run.
type Selection struct {
	TrackIDs []string      // Selected track IDs, in selection order
	Duration time.Duration // Accumulated duration including the starting value
}

// Fill selects tracks until the accumulated duration reaches target.
//
// accumulated is the starting duration (zero for a fresh playlist, the
// current playlist duration for a top-up). Genres are scanned in order, one
// batch of batchSize candidates each. Exhausting every genre before reaching
// the target is not an error; the partial selection is returned.
func Fill(ctx context.Context, searcher TrackSearcher, target, accumulated time.Duration, genres []string, batchSize int) (*Selection, error) {
	if searcher == nil {
		return nil, errors.New("track searcher is required")
	}

	sel := &Selection{Duration: accumulated}
	if target <= 0 || accumulated >= target {
		return sel, nil
	}

	for _, genre := range genres {
		candidates, err := searcher.SearchTracksByGenre(ctx, genre, batchSize)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search genre %q", genre)
		}

		for _, t := range candidates {
			if sel.Duration >= target {
				break
			}
			sel.TrackIDs = append(sel.TrackIDs, t.ID)
			sel.Duration += t.Duration
		}

		if sel.Duration >= target {
			break
		}
	}

	return sel, nil
}
