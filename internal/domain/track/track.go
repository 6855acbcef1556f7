// Package track provides the Track domain entity.
package track

import "time"

// Track represents a Spotify track entity.
// Contains only information retrieved from Spotify API.
type Track struct {
	ID       string        // Spotify Track ID
	Name     string        // Track name
	Artists  []string      // Artist names
	Album    string        // Album name
	Duration time.Duration // Track duration
	URL      string        // Spotify URL
}

// TotalDuration sums the durations of the given tracks.
func TotalDuration(tracks []Track) time.Duration {
	var total time.Duration
	for _, t := range tracks {
		total += t.Duration
	}
	return total
}
