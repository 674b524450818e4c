package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-hub/app/api"
	"github.com/lysyi3m/rss-hub/app/cfg"
	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/feed"
	"github.com/lysyi3m/rss-hub/app/ingest"
	"github.com/lysyi3m/rss-hub/app/logger"
	"github.com/lysyi3m/rss-hub/app/tasks"
)

func main() {
	if err := run(); err != nil {
		slog.Error("RSS Hub stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	slog.SetDefault(logger.New(os.Stdout, appCfg.LogFormat, appCfg.Debug))

	slog.Info("Starting RSS Hub", "version", appCfg.Version, "driver", appCfg.DBDriver)

	if appCfg.DBDriver == cfg.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(appCfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.Open(appCfg.DBDriver, appCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceRepo := database.NewSourceRepository(db)
	articleRepo := database.NewArticleRepository(db)

	seeds, err := cfg.LoadSources(appCfg.SourcesFile)
	if err != nil {
		return err
	}
	if err := seedSources(ctx, sourceRepo, seeds); err != nil {
		return err
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.UserAgent, appCfg.FetchTimeoutDuration(), appCfg.FetchRetries)
	orchestrator := ingest.NewOrchestrator(sourceRepo, articleRepo, fetcher, appCfg.WorkerCount)

	scheduler := tasks.NewScheduler(orchestrator, appCfg.SchedulerIntervalDuration(), appCfg.StartupDelayDuration())

	handler := api.NewHandler(sourceRepo, articleRepo, fetcher, scheduler)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // manual refresh runs a full cycle
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		slog.Info("Background scheduler stopped")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		slog.Info("HTTP server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("RSS Hub shutdown complete")
	return nil
}
