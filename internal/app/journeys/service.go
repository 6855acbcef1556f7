// Package journeys provides the journey orchestrator.
package journeys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/journeybox/internal/app/assembly"
	"github.com/osa030/journeybox/internal/domain/journey"
	"github.com/osa030/journeybox/internal/domain/track"
	"github.com/osa030/journeybox/internal/infra/config"
	"github.com/osa030/journeybox/internal/infra/maps"
	"github.com/osa030/journeybox/internal/infra/spotify"
	"github.com/osa030/journeybox/internal/infra/store"
)

// RouteFinder resolves a driving route between two addresses.
type RouteFinder interface {
	GetRoute(ctx context.Context, origin, destination string) (*maps.Route, error)
}

// MusicService is the subset of the Spotify client used by the orchestrator.
type MusicService interface {
	SearchTracksByGenre(ctx context.Context, genre string, limit int) ([]track.Track, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*spotify.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistRef string, trackIDs []string) error
	GetPlaylistTracks(ctx context.Context, playlistRef string) ([]track.Track, error)
}

// Scheduler registers a journey for background monitoring.
type Scheduler interface {
	Start(journeyID int64) error
}

// Service composes the route provider, the store, and the music provider
// into the three journey operations plus the playlist top-up flow.
type Service struct {
	cfg    config.PlaylistConfig
	store  store.JourneyStore
	routes RouteFinder
	music  MusicService

	// Monitor scheduler, attached after construction to break the
	// service <-> monitor dependency. May stay nil in tests.
	scheduler Scheduler

	// Per-journey locks serializing playlist mutations between a foreground
	// generate-playlist call and a background top-up for the same journey.
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewService creates the journey orchestrator.
func NewService(cfg config.PlaylistConfig, st store.JourneyStore, routes RouteFinder, music MusicService) *Service {
	return &Service{
		cfg:    cfg,
		store:  st,
		routes: routes,
		music:  music,
		locks:  make(map[int64]*sync.Mutex),
	}
}

// SetScheduler attaches the monitor scheduler used by StartJourney.
func (s *Service) SetScheduler(sched Scheduler) {
	s.scheduler = sched
}

// StartJourney resolves the route, persists the journey, and schedules a
// monitor for it. Returns maps.ErrRouteNotFound when no route exists.
func (s *Service) StartJourney(ctx context.Context, origin, destination string) (*journey.Journey, error) {
	route, err := s.routes.GetRoute(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, journey.New(route.Origin, route.Destination, route.Duration))
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist journey")
	}

	zlog.Info().
		Int64("journey_id", created.ID).
		Str("origin", created.Origin).
		Str("destination", created.Destination).
		Int64("journey_time", created.JourneySeconds()).
		Msg("journey started")

	// Fire-and-forget: the response does not wait on monitor registration,
	// and a full registry must not fail the request.
	if s.scheduler != nil {
		if err := s.scheduler.Start(created.ID); err != nil {
			zlog.Warn().Int64("journey_id", created.ID).Err(err).Msg("monitor not scheduled")
		}
	}

	return created, nil
}

// GeneratePlaylist assembles a playlist covering the journey time and records
// it on the journey. Returns store.ErrJourneyNotFound for unknown IDs.
func (s *Service) GeneratePlaylist(ctx context.Context, journeyID int64, genres []string) (string, error) {
	lock := s.journeyLock(journeyID)
	lock.Lock()
	defer lock.Unlock()

	j, err := s.store.Get(ctx, journeyID)
	if err != nil {
		return "", err
	}

	sel, err := assembly.Fill(ctx, s.music, j.JourneyTime, 0, genres, s.cfg.SearchLimit)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s - %s", s.cfg.NamePrefix, time.Now().Format("2006-01-02 15:04:05"))
	description := fmt.Sprintf("%s to %s", j.Origin, j.Destination)

	// An empty selection still produces a playlist
	playlist, err := s.music.CreatePlaylist(ctx, name, description, s.cfg.Public)
	if err != nil {
		return "", err
	}

	if err := s.music.AddTracksToPlaylist(ctx, playlist.ID, sel.TrackIDs); err != nil {
		return "", err
	}

	if err := s.store.SetPlaylist(ctx, journeyID, playlist.URL, genres); err != nil {
		return "", err
	}

	zlog.Info().
		Int64("journey_id", journeyID).
		Str("playlist_url", playlist.URL).
		Int("track_count", len(sel.TrackIDs)).
		Int64("duration", int64(sel.Duration/time.Second)).
		Msg("playlist generated")

	return playlist.URL, nil
}

// History returns every journey in insertion order.
func (s *Service) History(ctx context.Context) ([]*journey.Journey, error) {
	return s.store.List(ctx)
}

// TopUp appends tracks to the journey's playlist until its duration covers
// the journey time. Additive only: a playlist longer than the journey is
// left untouched. The journey must already have a playlist.
func (s *Service) TopUp(ctx context.Context, j *journey.Journey) error {
	if !j.HasPlaylist() {
		return errors.New("journey has no playlist")
	}

	lock := s.journeyLock(j.ID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.music.GetPlaylistTracks(ctx, j.PlaylistURL)
	if err != nil {
		return err
	}

	playlistDuration := track.TotalDuration(current)
	if playlistDuration >= j.JourneyTime {
		return nil
	}

	sel, err := assembly.Fill(ctx, s.music, j.JourneyTime, playlistDuration, j.Genres, s.cfg.SearchLimit)
	if err != nil {
		return err
	}

	if err := s.music.AddTracksToPlaylist(ctx, j.PlaylistURL, sel.TrackIDs); err != nil {
		return err
	}

	zlog.Info().
		Int64("journey_id", j.ID).
		Int("added_tracks", len(sel.TrackIDs)).
		Int64("playlist_duration", int64(sel.Duration/time.Second)).
		Int64("journey_time", j.JourneySeconds()).
		Msg("playlist topped up")

	return nil
}

// journeyLock returns the mutex owning playlist mutations for a journey.
func (s *Service) journeyLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
