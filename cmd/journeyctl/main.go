// Package main provides a CLI client for the journeybox API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
)

var (
	app    = kingpin.New("journeyctl", "journeybox API client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	// start command
	startCmd         = app.Command("start", "Start a journey")
	startOrigin      = startCmd.Arg("origin", "Origin address").Required().String()
	startDestination = startCmd.Arg("destination", "Destination address").Required().String()

	// playlist command
	playlistCmd     = app.Command("playlist", "Generate a playlist for a journey")
	playlistJourney = playlistCmd.Arg("journey-id", "Journey ID").Required().Int64()
	playlistGenres  = playlistCmd.Arg("genres", "Genres to search").Required().Strings()

	// history command
	historyCmd = app.Command("history", "Show journey history")

	// status command
	statusCmd     = app.Command("status", "Show monitor status for a journey")
	statusJourney = statusCmd.Arg("journey-id", "Journey ID").Required().Int64()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case startCmd.FullCommand():
		startJourney(*startOrigin, *startDestination)
	case playlistCmd.FullCommand():
		generatePlaylist(*playlistJourney, *playlistGenres)
	case historyCmd.FullCommand():
		history()
	case statusCmd.FullCommand():
		monitorStatus(*statusJourney)
	}
}

func startJourney(origin, destination string) {
	var resp struct {
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		JourneyTime int64  `json:"journey_time"`
		JourneyID   int64  `json:"journey_id"`
	}
	postJSON("/api/v1/journeys/start-journey/", map[string]any{
		"origin":      origin,
		"destination": destination,
	}, &resp)

	fmt.Printf("Journey #%d started\n", resp.JourneyID)
	fmt.Printf("  From: %s\n", resp.Origin)
	fmt.Printf("  To:   %s\n", resp.Destination)
	fmt.Printf("  Estimated driving time: %d seconds\n", resp.JourneyTime)
}

func generatePlaylist(journeyID int64, genres []string) {
	var resp struct {
		PlaylistURL string `json:"playlist_url"`
	}
	postJSON("/api/v1/journeys/generate-playlist/", map[string]any{
		"journey_id": journeyID,
		"genres":     genres,
	}, &resp)

	fmt.Printf("Playlist created: %s\n", resp.PlaylistURL)
}

func history() {
	var resp struct {
		History []struct {
			ID          int64    `json:"id"`
			Origin      string   `json:"origin"`
			Destination string   `json:"destination"`
			JourneyTime int64    `json:"journey_time"`
			CreatedAt   string   `json:"created_at"`
			PlaylistURL string   `json:"playlist_url"`
			Genres      []string `json:"genres"`
		} `json:"history"`
	}
	getJSON("/api/v1/journeys/history/", &resp)

	if len(resp.History) == 0 {
		fmt.Println("No journeys yet.")
		return
	}
	for _, j := range resp.History {
		fmt.Printf("#%d  %s -> %s  (%ds)  %s\n", j.ID, j.Origin, j.Destination, j.JourneyTime, j.CreatedAt)
		if j.PlaylistURL != "" {
			fmt.Printf("     playlist: %s  genres: %v\n", j.PlaylistURL, j.Genres)
		}
	}
}

func monitorStatus(journeyID int64) {
	var resp struct {
		JourneyID     int64  `json:"journey_id"`
		MonitorStatus string `json:"monitor_status"`
	}
	getJSON(fmt.Sprintf("/api/v1/journeys/monitor-status/%d/", journeyID), &resp)

	fmt.Printf("Journey #%d monitor: %s\n", resp.JourneyID, resp.MonitorStatus)
}

func postJSON(path string, payload, out any) {
	body, err := json.Marshal(payload)
	if err != nil {
		fatal(err)
	}
	resp, err := http.Post(*server+path, "application/json", bytes.NewReader(body))
	if err != nil {
		fatal(err)
	}
	decode(resp, out)
}

func getJSON(path string, out any) {
	resp, err := http.Get(*server + path)
	if err != nil {
		fatal(err)
	}
	decode(resp, out)
}

func decode(resp *http.Response, out any) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Detail string `json:"detail"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &errResp) == nil && errResp.Detail != "" {
			fmt.Printf("Error (%d): %s\n", resp.StatusCode, errResp.Detail)
		} else {
			fmt.Printf("Error (%d): %s\n", resp.StatusCode, string(data))
		}
		os.Exit(1)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
