package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	j := New("1600 Amphitheatre Pkwy", "1 Infinite Loop", 30*time.Minute)

	assert.Equal(t, PlaceholderUserID, j.UserID)
	assert.Equal(t, "1600 Amphitheatre Pkwy", j.Origin)
	assert.Equal(t, "1 Infinite Loop", j.Destination)
	assert.Equal(t, int64(1800), j.JourneySeconds())
	assert.False(t, j.HasPlaylist())
	assert.Empty(t, j.Genres)
	assert.False(t, j.CreatedAt.IsZero())
}

func TestGenres_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		genres   []string
		stored   string
		restored []string
	}{
		{
			name:     "single genre",
			genres:   []string{"rock"},
			stored:   "rock",
			restored: []string{"rock"},
		},
		{
			name:     "multiple genres",
			genres:   []string{"rock", "jazz", "metal"},
			stored:   "rock,jazz,metal",
			restored: []string{"rock", "jazz", "metal"},
		},
		{
			name:     "empty list",
			genres:   nil,
			stored:   "",
			restored: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := JoinGenres(tt.genres)
			assert.Equal(t, tt.stored, stored)
			assert.Equal(t, tt.restored, SplitGenres(stored))
		})
	}
}

func TestSplitGenres_Whitespace(t *testing.T) {
	assert.Equal(t, []string{"rock", "jazz"}, SplitGenres("rock, jazz"))
	assert.Equal(t, []string{"rock"}, SplitGenres("rock,,"))
}
