package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/blocos-bh/app/api"
	"github.com/lysyi3m/blocos-bh/app/carnival"
	"github.com/lysyi3m/blocos-bh/app/cfg"
	"github.com/lysyi3m/blocos-bh/app/database"
	"github.com/lysyi3m/blocos-bh/app/geo"
	"github.com/lysyi3m/blocos-bh/app/metrics"
	"github.com/lysyi3m/blocos-bh/app/sheet"
	"github.com/lysyi3m/blocos-bh/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// --help
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Blocos BH", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	schema, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", schema.Version, "upgraded", schema.Upgraded())

	geocache := geo.NewCache(appCfg.GeoCachePath)
	if err := geocache.Load(); err != nil {
		slog.Warn("Geocache unreadable, starting empty", "path", appCfg.GeoCachePath, "error", err)
	}
	metrics.SetGeocacheEntries(geocache.Len())
	slog.Info("Geocache loaded", "entries", geocache.Len())

	geocoder := geo.NewGeocoder(geocache, geo.Options{
		APIKey:    appCfg.GoogleMapsAPIKey,
		BaseURL:   appCfg.GeocodeBaseURL,
		Region:    appCfg.GeocodeRegion,
		Timeout:   appCfg.GetGeocodeTimeout(),
		UserAgent: appCfg.UserAgent,
	})

	var resolver carnival.Resolver = geocoder
	if appCfg.CacheOnlyGeocoding {
		resolver = geocoder.WithCacheOnly()
	}

	fetcher := sheet.NewFetcher(appCfg.EventsSheetURL, appCfg.RehearsalsSheetURL, appCfg.GetFetchTimeout(), appCfg.UserAgent)
	normalizer := carnival.NewNormalizer(resolver, appCfg.SeasonYear, time.Local)
	loader := carnival.NewLoader(fetcher, normalizer, geocache)
	snapshots := carnival.NewSnapshotCache(loader, appCfg.GetRefreshInterval(), appCfg.MinHealthyEvents)

	presets := carnival.NewPresetCache(appCfg.PresetsFile)
	if err := presets.Run(); err != nil {
		slog.Warn("Failed to load presets, using defaults", "path", appCfg.PresetsFile, "error", err)
	}

	// The warm-up only makes sense with a key.
	var warmResolver carnival.Resolver
	if appCfg.GoogleMapsAPIKey != "" {
		warmResolver = geocoder
	} else {
		slog.Info("Geocoding disabled (GOOGLE_MAPS_API_KEY not set)")
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.GetRefreshInterval())
	scheduler := tasks.NewScheduler(snapshots, fetcher, warmResolver, geocache, appCfg.GetRefreshInterval(), appCfg.WorkerCount)
	scheduler.Start()

	voteRepo := database.NewVoteRepository(db, appCfg.VoteLimitPerIP)
	handler := api.NewHandler(snapshots, presets, voteRepo, scheduler, appCfg.GetBaseURL(), appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", appCfg.GetBaseURL())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	scheduler.Stop()

	if err := geocache.SaveIfDirty(); err != nil {
		slog.Error("Failed to persist geocache", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
