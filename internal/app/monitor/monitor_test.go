package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/journeybox/internal/domain/journey"
	"github.com/osa030/journeybox/internal/infra/config"
	"github.com/osa030/journeybox/internal/infra/maps"
	"github.com/osa030/journeybox/internal/infra/store"
)

// fakeRoutes returns a fixed duration, switchable at runtime.
type fakeRoutes struct {
	mu       sync.Mutex
	duration time.Duration
	err      error
	calls    int
}

func (f *fakeRoutes) GetRoute(_ context.Context, origin, destination string) (*maps.Route, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &maps.Route{Origin: origin, Destination: destination, Duration: f.duration}, nil
}

func (f *fakeRoutes) setDuration(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration = d
}

type fakeTopUpper struct {
	mu    sync.Mutex
	calls []*journey.Journey
	err   error
}

func (f *fakeTopUpper) TopUp(_ context.Context, j *journey.Journey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	clone := *j
	f.calls = append(f.calls, &clone)
	return nil
}

func (f *fakeTopUpper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestRegistry(st store.JourneyStore, routes *fakeRoutes, topUp *fakeTopUpper, maxJourneys int) *Registry {
	r := NewRegistry(config.MonitorConfig{IntervalSec: 60, MaxJourneys: maxJourneys}, st, routes, topUp)
	r.interval = 10 * time.Millisecond
	return r
}

func TestRegistry_TopUpOnDurationIncrease(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 600 * time.Second}
	topUp := &fakeTopUpper{}

	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)
	url := "https://open.spotify.com/playlist/pl1"
	require.NoError(t, st.SetPlaylist(context.Background(), created.ID, url, []string{"rock"}))

	r := newTestRegistry(st, routes, topUp, 0)
	defer r.Close()
	require.NoError(t, r.Start(created.ID))

	// First polls see no change
	require.Eventually(t, func() bool {
		routes.mu.Lock()
		defer routes.mu.Unlock()
		return routes.calls >= 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 0, topUp.count())

	// Journey got longer
	routes.setDuration(900 * time.Second)

	require.Eventually(t, func() bool { return topUp.count() >= 1 }, time.Second, time.Millisecond)

	// New duration persisted before top-up
	persisted, err := st.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), persisted.JourneySeconds())

	// Top-up saw the fresh duration and the stored genres
	topUp.mu.Lock()
	first := topUp.calls[0]
	topUp.mu.Unlock()
	assert.Equal(t, int64(900), first.JourneySeconds())
	assert.Equal(t, []string{"rock"}, first.Genres)
	assert.Equal(t, url, first.PlaylistURL)

	assert.Equal(t, StatusPolling, r.Status(created.ID))
}

func TestRegistry_NoTopUpWithoutPlaylist(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 900 * time.Second}
	topUp := &fakeTopUpper{}

	// Stored at 600s, provider already says 900s, but no playlist yet
	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, topUp, 0)
	defer r.Close()
	require.NoError(t, r.Start(created.ID))

	require.Eventually(t, func() bool {
		j, err := st.Get(context.Background(), created.ID)
		return err == nil && j.JourneySeconds() == 900
	}, time.Second, time.Millisecond)

	// Time-change detection still updates the store, playlist untouched
	assert.Equal(t, 0, topUp.count())
}

func TestRegistry_StopsWhenJourneyGone(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 600 * time.Second}
	topUp := &fakeTopUpper{}

	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, topUp, 0)
	defer r.Close()
	require.NoError(t, r.Start(created.ID))

	require.NoError(t, st.Delete(context.Background(), created.ID))

	require.Eventually(t, func() bool {
		return r.Status(created.ID) == StatusStopped
	}, time.Second, time.Millisecond)
}

func TestRegistry_FailsOnProviderError(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{err: errors.New("quota exceeded")}
	topUp := &fakeTopUpper{}

	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, topUp, 0)
	defer r.Close()
	require.NoError(t, r.Start(created.ID))

	require.Eventually(t, func() bool {
		return r.Status(created.ID) == StatusFailed
	}, time.Second, time.Millisecond)
}

func TestRegistry_StartIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 600 * time.Second}

	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, &fakeTopUpper{}, 0)
	defer r.Close()

	require.NoError(t, r.Start(created.ID))
	require.NoError(t, r.Start(created.ID))
	assert.Equal(t, StatusPolling, r.Status(created.ID))
}

func TestRegistry_CapacityLimit(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 600 * time.Second}

	first, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)
	second, err := st.Create(context.Background(), journey.New("A", "C", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, &fakeTopUpper{}, 1)
	defer r.Close()

	require.NoError(t, r.Start(first.ID))
	assert.Error(t, r.Start(second.ID))
	assert.Equal(t, StatusUnknown, r.Status(second.ID))
}

func TestRegistry_StopAndClose(t *testing.T) {
	st := store.NewMemoryStore()
	routes := &fakeRoutes{duration: 600 * time.Second}

	created, err := st.Create(context.Background(), journey.New("A", "B", 600*time.Second))
	require.NoError(t, err)

	r := newTestRegistry(st, routes, &fakeTopUpper{}, 0)
	require.NoError(t, r.Start(created.ID))

	r.Stop(created.ID)
	require.Eventually(t, func() bool {
		return r.Status(created.ID) == StatusStopped
	}, time.Second, time.Millisecond)

	r.Close()
	assert.Error(t, r.Start(created.ID))
}
