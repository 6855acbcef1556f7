// Package journey provides the Journey domain entity.
package journey

import (
	"strings"
	"time"
)

// PlaceholderUserID is the fixed owner recorded for every journey.
// There is no real multi-user identity in this service.
const PlaceholderUserID = "user_id_placeholder"

// Journey represents one persisted trip.
type Journey struct {
	ID          int64         // Store-assigned identifier
	UserID      string        // Owner (always PlaceholderUserID)
	Origin      string        // Canonical start address from the directions provider
	Destination string        // Canonical end address from the directions provider
	JourneyTime time.Duration // Latest known driving-time estimate
	CreatedAt   time.Time     // Creation time
	PlaylistURL string        // Spotify playlist URL, empty until a playlist is generated
	Genres      []string      // Genres requested by the most recent playlist generation
}

// New creates a journey for the placeholder user.
func New(origin, destination string, journeyTime time.Duration) *Journey {
	return &Journey{
		UserID:      PlaceholderUserID,
		Origin:      origin,
		Destination: destination,
		JourneyTime: journeyTime,
		CreatedAt:   time.Now(),
	}
}

// HasPlaylist reports whether a playlist has been generated for this journey.
func (j *Journey) HasPlaylist() bool {
	return j.PlaylistURL != ""
}

// JourneySeconds returns the journey time in whole seconds, the unit used at
// the store and API boundaries.
func (j *Journey) JourneySeconds() int64 {
	return int64(j.JourneyTime / time.Second)
}

// JoinGenres serializes a genre list for storage.
func JoinGenres(genres []string) string {
	return strings.Join(genres, ",")
}

// SplitGenres parses a stored genre list. An empty value yields nil.
func SplitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
