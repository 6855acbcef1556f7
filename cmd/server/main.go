// Package main provides the server entry point.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/journeybox/internal/api/rest"
	"github.com/osa030/journeybox/internal/app/journeys"
	"github.com/osa030/journeybox/internal/app/monitor"
	"github.com/osa030/journeybox/internal/infra/config"
	"github.com/osa030/journeybox/internal/infra/logger"
	"github.com/osa030/journeybox/internal/infra/maps"
	"github.com/osa030/journeybox/internal/infra/spotify"
	"github.com/osa030/journeybox/internal/infra/store"
)

var (
	app        = kingpin.New("journeybox-server", "journeybox journey playlist server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run server
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Open journey store
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	journeyStore := store.NewPostgresStore(db)
	if err := journeyStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	zlog.Info().Msg("Connected to PostgreSQL database")

	// Create Google Maps client
	mapsClient, err := maps.New(maps.Config{APIKey: cfg.Maps.APIKey})
	if err != nil {
		return fmt.Errorf("failed to create google maps client: %w", err)
	}

	// Create Spotify client
	spotifyClient, err := spotify.New(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		Market:       cfg.Spotify.Market,
	})
	if err != nil {
		return fmt.Errorf("failed to create Spotify client: %w", err)
	}

	// Create orchestrator and monitor registry
	svc := journeys.NewService(cfg.Playlist, journeyStore, mapsClient, spotifyClient)
	registry := monitor.NewRegistry(cfg.Monitor, journeyStore, mapsClient, svc)
	svc.SetScheduler(registry)

	// Resume monitoring for journeys that already exist
	existing, err := journeyStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list journeys: %w", err)
	}
	for _, j := range existing {
		if err := registry.Start(j.ID); err != nil {
			zlog.Warn().Int64("journey_id", j.ID).Err(err).Msg("monitor not resumed")
		}
	}
	if len(existing) > 0 {
		zlog.Info().Msgf("Resumed monitoring for %d journeys", len(existing))
	}

	// Create HTTP router
	router := mux.NewRouter()
	router.Use(rest.RequestLogging, rest.Recovery)

	rest.New(svc, registry).Register(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(router, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		registry.Close()
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown: stop monitors first, then drain the server
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
