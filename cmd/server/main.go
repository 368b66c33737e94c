package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/oakhurst/talentpipe/api"
	migrations "github.com/oakhurst/talentpipe/db"
	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/config"
	"github.com/oakhurst/talentpipe/internal/db"
	"github.com/oakhurst/talentpipe/internal/dupes"
	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/jobs"
	"github.com/oakhurst/talentpipe/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting talentpipe server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, migrations.Migrations, migrations.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Background worker pool: GDPR sweeps and duplicate scans
	repo := sqlite.New(database, logger)
	act := activity.NewLogger(repo, logger)
	gdprSvc := gdpr.NewService(repo, act, logger, cfg.GDPR.BulkConcurrent)
	scanner := dupes.NewScanner(repo, act, logger)
	jobRepo := jobs.NewRepository(database)
	pool := jobs.NewWorkerPool(jobRepo, jobs.Handlers(gdprSvc, scanner, logger), logger, cfg.WorkerCount)
	pool.Start(ctx)

	handler, err := api.SetupRoutes(ctx, cfg, version, buildTime, database, pool)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Periodically enqueue the GDPR retention sweep
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.GDPR.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if _, err := pool.Enqueue(ctx, jobs.TypeGDPRSweep, nil, 10, 3); err != nil {
					logger.Error("enqueue gdpr sweep", "err", err)
				}
			}
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	close(sweepDone)
	pool.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := database.Close(); err != nil {
		logger.Error("closing db", "err", err)
	}

	logger.Info("server exited")
}
