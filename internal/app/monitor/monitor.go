// Package monitor re-polls journey durations in the background.
//
// A Registry owns one polling goroutine per started journey. Each poll
// re-reads the journey, asks the directions provider for a fresh estimate,
// persists any change, and triggers a playlist top-up when the journey has a
// playlist. A monitor stops normally when its journey disappears from the
// store and is marked failed when a provider or store call errors.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/journeybox/internal/app/journeys"
	"github.com/osa030/journeybox/internal/domain/journey"
	"github.com/osa030/journeybox/internal/infra/config"
	"github.com/osa030/journeybox/internal/infra/store"
)

// Status represents the observable state of one journey's monitor.
type Status string

const (
	StatusUnknown Status = "UNKNOWN" // Never monitored
	StatusPolling Status = "POLLING" // Loop running
	StatusStopped Status = "STOPPED" // Terminated normally (journey gone or stopped)
	StatusFailed  Status = "FAILED"  // Terminated on a provider or store error
)

// TopUpper extends a journey's playlist to cover its journey time.
type TopUpper interface {
	TopUp(ctx context.Context, j *journey.Journey) error
}

// Registry owns all monitor goroutines, keyed by journey ID.
type Registry struct {
	mu       sync.Mutex
	statuses map[int64]Status
	cancels  map[int64]context.CancelFunc
	wg       sync.WaitGroup

	interval    time.Duration
	maxJourneys int

	store  store.JourneyStore
	routes journeys.RouteFinder
	topUp  TopUpper

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates a monitor registry.
func NewRegistry(cfg config.MonitorConfig, st store.JourneyStore, routes journeys.RouteFinder, topUp TopUpper) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		statuses:    make(map[int64]Status),
		cancels:     make(map[int64]context.CancelFunc),
		interval:    cfg.Interval(),
		maxJourneys: cfg.MaxJourneys,
		store:       st,
		routes:      routes,
		topUp:       topUp,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins monitoring a journey. Starting an already polling journey is
// a no-op. Fails when the registry is closed or the monitor cap is reached.
func (r *Registry) Start(journeyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return errors.New("monitor registry is closed")
	}
	if r.statuses[journeyID] == StatusPolling {
		return nil
	}
	if r.maxJourneys > 0 && r.activeLocked() >= r.maxJourneys {
		return errors.Newf("monitor capacity reached (%d)", r.maxJourneys)
	}

	ctx, cancel := context.WithCancel(r.ctx)
	r.cancels[journeyID] = cancel
	r.statuses[journeyID] = StatusPolling

	r.wg.Add(1)
	go r.run(ctx, journeyID)

	zlog.Debug().Int64("journey_id", journeyID).Msg("monitor started")
	return nil
}

// Stop cancels the monitor for a journey, if one is running.
func (r *Registry) Stop(journeyID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.cancels[journeyID]; ok {
		cancel()
	}
}

// Status returns the monitor status for a journey.
func (r *Registry) Status(journeyID int64) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.statuses[journeyID]; ok {
		return s
	}
	return StatusUnknown
}

// Close cancels every monitor and waits for the goroutines to drain.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Registry) activeLocked() int {
	n := 0
	for _, s := range r.statuses {
		if s == StatusPolling {
			n++
		}
	}
	return n
}

func (r *Registry) setStatus(journeyID int64, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[journeyID] = s
	if s != StatusPolling {
		if cancel, ok := r.cancels[journeyID]; ok {
			cancel()
			delete(r.cancels, journeyID)
		}
	}
}

// run is the per-journey polling loop. Polls immediately, then once per
// interval until the journey disappears, an error occurs, or the registry
// shuts down.
func (r *Registry) run(ctx context.Context, journeyID int64) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		status, done := r.poll(ctx, journeyID)
		if done {
			r.setStatus(journeyID, status)
			return
		}

		select {
		case <-ctx.Done():
			r.setStatus(journeyID, StatusStopped)
			return
		case <-ticker.C:
		}
	}
}

// poll executes one monitoring iteration. Returns the resulting status and
// whether the loop should terminate.
func (r *Registry) poll(ctx context.Context, journeyID int64) (Status, bool) {
	j, err := r.store.Get(ctx, journeyID)
	if errors.Is(err, store.ErrJourneyNotFound) {
		// Deleted out of band: normal termination, not an error
		zlog.Info().Int64("journey_id", journeyID).Msg("journey gone, monitor stopping")
		return StatusStopped, true
	}
	if err != nil {
		zlog.Error().Int64("journey_id", journeyID).Err(err).Msg("monitor store read failed")
		return StatusFailed, true
	}

	route, err := r.routes.GetRoute(ctx, j.Origin, j.Destination)
	if err != nil {
		zlog.Error().Int64("journey_id", journeyID).Err(err).Msg("monitor route poll failed")
		return StatusFailed, true
	}

	if route.Duration == j.JourneyTime {
		return StatusPolling, false
	}

	if err := r.store.UpdateJourneyTime(ctx, journeyID, route.Duration); err != nil {
		zlog.Error().Int64("journey_id", journeyID).Err(err).Msg("monitor time update failed")
		return StatusFailed, true
	}

	zlog.Info().
		Int64("journey_id", journeyID).
		Int64("old_journey_time", j.JourneySeconds()).
		Int64("new_journey_time", int64(route.Duration/time.Second)).
		Msg("journey time changed")

	if j.HasPlaylist() {
		j.JourneyTime = route.Duration
		if err := r.topUp.TopUp(ctx, j); err != nil {
			zlog.Error().Int64("journey_id", journeyID).Err(err).Msg("monitor top-up failed")
			return StatusFailed, true
		}
	}

	return StatusPolling, false
}
