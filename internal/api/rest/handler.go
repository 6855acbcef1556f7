// Package rest provides the HTTP API for the journey service.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"github.com/osa030/journeybox/internal/app/monitor"
	"github.com/osa030/journeybox/internal/domain/journey"
	"github.com/osa030/journeybox/internal/infra/maps"
	"github.com/osa030/journeybox/internal/infra/store"
)

// JourneyService is the orchestrator surface used by the handlers.
type JourneyService interface {
	StartJourney(ctx context.Context, origin, destination string) (*journey.Journey, error)
	GeneratePlaylist(ctx context.Context, journeyID int64, genres []string) (string, error)
	History(ctx context.Context) ([]*journey.Journey, error)
}

// MonitorStatusReader reports the monitor state for a journey.
type MonitorStatusReader interface {
	Status(journeyID int64) monitor.Status
}

// Handler wires HTTP endpoints to the journey service.
type Handler struct {
	svc      JourneyService
	monitors MonitorStatusReader
}

// New creates a Handler.
func New(svc JourneyService, monitors MonitorStatusReader) *Handler {
	return &Handler{svc: svc, monitors: monitors}
}

// Register mounts the journey routes on the given router.
func (h *Handler) Register(router *mux.Router) {
	api := router.PathPrefix("/api/v1/journeys").Subrouter()
	api.HandleFunc("/start-journey/", h.startJourney).Methods(http.MethodPost)
	api.HandleFunc("/generate-playlist/", h.generatePlaylist).Methods(http.MethodPost)
	api.HandleFunc("/history/", h.history).Methods(http.MethodGet)
	api.HandleFunc("/monitor-status/{journey_id:[0-9]+}/", h.monitorStatus).Methods(http.MethodGet)
}

type startJourneyRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type startJourneyResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	JourneyTime int64  `json:"journey_time"`
	JourneyID   int64  `json:"journey_id"`
}

func (h *Handler) startJourney(w http.ResponseWriter, r *http.Request) {
	var req startJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Origin == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}

	j, err := h.svc.StartJourney(r.Context(), req.Origin, req.Destination)
	if errors.Is(err, maps.ErrRouteNotFound) {
		writeError(w, http.StatusNotFound, "Journey not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, startJourneyResponse{
		Origin:      j.Origin,
		Destination: j.Destination,
		JourneyTime: j.JourneySeconds(),
		JourneyID:   j.ID,
	})
}

type generatePlaylistRequest struct {
	Genres    []string `json:"genres"`
	JourneyID int64    `json:"journey_id"`
}

type generatePlaylistResponse struct {
	PlaylistURL string `json:"playlist_url"`
}

func (h *Handler) generatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req generatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Genres) == 0 {
		writeError(w, http.StatusBadRequest, "at least one genre is required")
		return
	}

	url, err := h.svc.GeneratePlaylist(r.Context(), req.JourneyID, req.Genres)
	if errors.Is(err, store.ErrJourneyNotFound) {
		writeError(w, http.StatusNotFound, "Journey not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generatePlaylistResponse{PlaylistURL: url})
}

type journeyRecord struct {
	ID          int64    `json:"id"`
	UserID      string   `json:"user_id"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	JourneyTime int64    `json:"journey_time"`
	CreatedAt   string   `json:"created_at"`
	PlaylistURL string   `json:"playlist_url,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

type historyResponse struct {
	History []journeyRecord `json:"history"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	journeys, err := h.svc.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := make([]journeyRecord, 0, len(journeys))
	for _, j := range journeys {
		records = append(records, journeyRecord{
			ID:          j.ID,
			UserID:      j.UserID,
			Origin:      j.Origin,
			Destination: j.Destination,
			JourneyTime: j.JourneySeconds(),
			CreatedAt:   j.CreatedAt.Format(time.RFC3339),
			PlaylistURL: j.PlaylistURL,
			Genres:      j.Genres,
		})
	}

	writeJSON(w, http.StatusOK, historyResponse{History: records})
}

type monitorStatusResponse struct {
	JourneyID     int64  `json:"journey_id"`
	MonitorStatus string `json:"monitor_status"`
}

func (h *Handler) monitorStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJourneyID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, monitorStatusResponse{
		JourneyID:     id,
		MonitorStatus: string(h.monitors.Status(id)),
	})
}

func parseJourneyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["journey_id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid journey id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
