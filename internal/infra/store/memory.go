package store

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/journeybox/internal/domain/journey"
)

// MemoryStore stores journeys in memory. Used in tests and for local
// development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	journeys map[int64]*journey.Journey
	order    []int64
	nextID   int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		journeys: make(map[int64]*journey.Journey),
		nextID:   1,
	}
}

// Create persists a journey and returns it with the assigned ID.
func (s *MemoryStore) Create(_ context.Context, j *journey.Journey) (*journey.Journey, error) {
	if j == nil {
		return nil, errors.New("journey is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := *j
	created.ID = s.nextID
	s.nextID++
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	s.journeys[created.ID] = &created
	s.order = append(s.order, created.ID)

	clone := created
	return &clone, nil
}

// Get returns the journey with the given ID.
func (s *MemoryStore) Get(_ context.Context, id int64) (*journey.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journeys[id]
	if !ok {
		return nil, ErrJourneyNotFound
	}
	clone := *j
	return &clone, nil
}

// List returns all journeys in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]*journey.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journeys := make([]*journey.Journey, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.journeys[id]
		journeys = append(journeys, &clone)
	}
	return journeys, nil
}

// UpdateJourneyTime overwrites the stored duration estimate.
func (s *MemoryStore) UpdateJourneyTime(_ context.Context, id int64, journeyTime time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[id]
	if !ok {
		return ErrJourneyNotFound
	}
	j.JourneyTime = journeyTime
	return nil
}

// SetPlaylist records the playlist URL and genre list for a journey.
func (s *MemoryStore) SetPlaylist(_ context.Context, id int64, playlistURL string, genres []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[id]
	if !ok {
		return ErrJourneyNotFound
	}
	j.PlaylistURL = playlistURL
	j.Genres = append([]string(nil), genres...)
	return nil
}

// Delete removes a journey. Exists to exercise monitor termination in tests;
// the HTTP surface exposes no deletion.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journeys[id]; !ok {
		return ErrJourneyNotFound
	}
	delete(s.journeys, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
