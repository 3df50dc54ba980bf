package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okimc/toolperks/internal/booster"
	"github.com/okimc/toolperks/internal/catalog"
	"github.com/okimc/toolperks/internal/config"
	"github.com/okimc/toolperks/internal/database"
	"github.com/okimc/toolperks/internal/database/postgres"
	"github.com/okimc/toolperks/internal/gacha"
	"github.com/okimc/toolperks/internal/logger"
	"github.com/okimc/toolperks/internal/perks"
	"github.com/okimc/toolperks/internal/server"
	"github.com/okimc/toolperks/internal/statecache"
	"github.com/okimc/toolperks/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	slog.Info("Starting toolperks",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"pity_threshold", cfg.PityThreshold)

	dbPool, err := database.NewPool(cfg.GetDBConnString(), database.DefaultMaxConnections,
		5*time.Minute, 30*time.Minute)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	userRepo := postgres.NewUserRepository(dbPool)
	perkRepo := postgres.NewPerkRepository(dbPool)

	cat, err := catalog.New(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load perk catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	slog.Info("Perk catalog loaded", "perks", cat.Size(), "tools", len(cat.ToolTypes()))

	savePool := worker.NewPool(cfg.SaveWorkers, cfg.SaveQueueSize)
	savePool.Start()

	cache := statecache.New(userRepo, perkRepo, cat, savePool, cfg.DefaultAnimations)
	engine := gacha.NewEngine(cat, cfg.PityThreshold, cfg.PityGuaranteedCategory)

	var boosterAPI booster.API = booster.NoopAPI{}
	if cfg.BoosterURL != "" {
		boosterAPI = booster.NewClient(cfg.BoosterURL, cfg.BoosterAPIKey, cfg.BoosterTimeout)
	} else {
		slog.Warn("No booster service configured, boosters tracked locally only")
	}
	ledger := booster.NewLedger(boosterAPI)

	svc := perks.NewService(cache, engine, cat, ledger, userRepo, perkRepo, perks.Options{
		BatchRollDelay:      cfg.BatchRollDelay,
		ShutdownSaveTimeout: cfg.ShutdownSaveTimeout,
		ProfileCacheSize:    cfg.ProfileCacheSize,
		ProfileCacheTTL:     cfg.ProfileCacheTTL,
		DefaultAnimations:   cfg.DefaultAnimations,
	})

	// Reloading the catalog re-resolves cached perk links and re-registers
	// boosters so live sessions pick up definition changes.
	reload := func(ctx context.Context) (int, error) {
		if err := cat.Reload(); err != nil {
			return 0, err
		}
		cache.Relink()
		svc.ReapplyAllBoosters(ctx)
		return cat.Size(), nil
	}

	watcher := catalog.NewWatcher(cfg.CatalogPath, cfg.CatalogWatchInterval, func() {
		if _, err := reload(context.Background()); err != nil {
			slog.Error("Catalog reload failed", "error", err)
		}
	})
	watcher.Start()

	flusherStop := startFlusher(cache, cfg.FlushInterval)

	srv := server.NewServer(cfg.Port, cfg.APIKey, dbPool, svc, cat, reload)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("Server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	watcher.Stop()
	close(flusherStop)

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Server forced shutdown", "error", err)
	}
	if err := svc.Shutdown(shutdownCtx); err != nil {
		slog.Error("Service shutdown incomplete", "error", err)
	}

	slog.Info("Shutdown complete")
}

// startFlusher persists dirty sessions on an interval so a crash loses at
// most one interval of mutations.
func startFlusher(cache *statecache.Cache, interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	if interval <= 0 {
		return stop
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cache.SaveAllDirty(context.Background()); err != nil {
					slog.Error("Periodic flush failed", "error", err)
				}
			case <-stop:
				return
			}
		}
	}()
	return stop
}
