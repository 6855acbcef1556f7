package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/journeybox/internal/app/monitor"
	"github.com/osa030/journeybox/internal/domain/journey"
	"github.com/osa030/journeybox/internal/infra/maps"
	"github.com/osa030/journeybox/internal/infra/store"
)

type fakeService struct {
	journey     *journey.Journey
	playlistURL string
	history     []*journey.Journey
	err         error
}

func (f *fakeService) StartJourney(_ context.Context, origin, destination string) (*journey.Journey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.journey, nil
}

func (f *fakeService) GeneratePlaylist(_ context.Context, journeyID int64, genres []string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.playlistURL, nil
}

func (f *fakeService) History(_ context.Context) ([]*journey.Journey, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type fakeStatusReader struct {
	status monitor.Status
}

func (f *fakeStatusReader) Status(int64) monitor.Status { return f.status }

func newTestRouter(svc *fakeService, status monitor.Status) *mux.Router {
	router := mux.NewRouter()
	New(svc, &fakeStatusReader{status: status}).Register(router)
	return router
}

func TestHandler_StartJourney(t *testing.T) {
	svc := &fakeService{journey: &journey.Journey{
		ID:          7,
		Origin:      "A-canonical",
		Destination: "B-canonical",
		JourneyTime: 1800 * time.Second,
	}}
	router := newTestRouter(svc, monitor.StatusPolling)

	body := bytes.NewBufferString(`{"origin": "A", "destination": "B"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/start-journey/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp startJourneyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A-canonical", resp.Origin)
	assert.Equal(t, "B-canonical", resp.Destination)
	assert.Equal(t, int64(1800), resp.JourneyTime)
	assert.Equal(t, int64(7), resp.JourneyID)
}

func TestHandler_StartJourney_NoRoute(t *testing.T) {
	svc := &fakeService{err: maps.ErrRouteNotFound}
	router := newTestRouter(svc, monitor.StatusUnknown)

	body := bytes.NewBufferString(`{"origin": "A", "destination": "Atlantis"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/start-journey/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Journey not found")
}

func TestHandler_StartJourney_BadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{}, monitor.StatusUnknown)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"origin":`},
		{name: "missing fields", body: `{"origin": "A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/start-journey/", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_GeneratePlaylist(t *testing.T) {
	svc := &fakeService{playlistURL: "https://open.spotify.com/playlist/abc"}
	router := newTestRouter(svc, monitor.StatusPolling)

	body := bytes.NewBufferString(`{"genres": ["rock"], "journey_id": 7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/generate-playlist/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generatePlaylistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://open.spotify.com/playlist/abc", resp.PlaylistURL)
}

func TestHandler_GeneratePlaylist_UnknownJourney(t *testing.T) {
	svc := &fakeService{err: store.ErrJourneyNotFound}
	router := newTestRouter(svc, monitor.StatusUnknown)

	body := bytes.NewBufferString(`{"genres": ["rock"], "journey_id": 42}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/generate-playlist/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GeneratePlaylist_ProviderError(t *testing.T) {
	svc := &fakeService{err: errors.New("spotify: token refresh failed")}
	router := newTestRouter(svc, monitor.StatusUnknown)

	body := bytes.NewBufferString(`{"genres": ["rock"], "journey_id": 7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journeys/generate-playlist/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "token refresh failed")
}

func TestHandler_History(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeService{history: []*journey.Journey{
		{
			ID:          1,
			UserID:      journey.PlaceholderUserID,
			Origin:      "A",
			Destination: "B",
			JourneyTime: 600 * time.Second,
			CreatedAt:   created,
		},
		{
			ID:          2,
			UserID:      journey.PlaceholderUserID,
			Origin:      "C",
			Destination: "D",
			JourneyTime: 900 * time.Second,
			CreatedAt:   created,
			PlaylistURL: "https://open.spotify.com/playlist/abc",
			Genres:      []string{"rock", "jazz"},
		},
	}}
	router := newTestRouter(svc, monitor.StatusPolling)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journeys/history/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, int64(600), resp.History[0].JourneyTime)
	assert.Empty(t, resp.History[0].PlaylistURL)
	assert.Equal(t, []string{"rock", "jazz"}, resp.History[1].Genres)
	assert.Equal(t, "2026-08-01T12:00:00Z", resp.History[1].CreatedAt)
}

func TestHandler_MonitorStatus(t *testing.T) {
	router := newTestRouter(&fakeService{}, monitor.StatusFailed)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journeys/monitor-status/7/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp monitorStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.JourneyID)
	assert.Equal(t, "FAILED", resp.MonitorStatus)
}
