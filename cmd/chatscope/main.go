// Package main contains the entrypoint for the chatscope HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chatscope-app/chatscope/internal/ai"
	"github.com/chatscope-app/chatscope/internal/config"
	"github.com/chatscope-app/chatscope/internal/database"
	"github.com/chatscope-app/chatscope/internal/logger"
	"github.com/chatscope-app/chatscope/internal/scheduler"
	"github.com/chatscope-app/chatscope/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// ai client, HTTP server, scheduler), handles graceful shutdown, and returns
// an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Error("Failed to create uploads directory", "dir", cfg.Uploads.Dir, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	store := database.NewStore(db, log)

	var aiClient ai.Client
	if cfg.AI.Enabled() {
		aiClient, err = ai.NewClient(ctx, cfg.AI, log)
		if err != nil {
			log.Error("Failed to initialize AI client", "error", err)
			return 1
		}
		// Note: the Gemini client does not have an explicit Close method in the SDK used.
	} else {
		log.Info("AI integration disabled: no API key configured")
	}

	session := server.NewSession(cfg.Analysis)
	if err := session.Restore(ctx, store); err != nil {
		log.Error("Failed to restore last transcript", "error", err)
		return 1
	}

	sched, err := scheduler.New(log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	if err := scheduler.RegisterMaintenanceJobs(sched, cfg, store, log); err != nil {
		log.Error("Failed to register maintenance jobs", "error", err)
		return 1
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Failed to stop scheduler", "error", err)
		}
	}()

	h := server.NewHandler(cfg, store, session, aiClient, log)
	srv := server.NewServer(h, log)

	log.Info("Starting server...", "addr", cfg.Server.Addr)
	runErr := serve(ctx, srv, cfg.Server.ShutdownTimeout, log)
	log.Info("Server run loop finished. Initiating shutdown...")

	// Check if the error is significant (not just context cancellation)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully.")
	// Allow logs to flush before exiting gracefully
	time.Sleep(time.Second)
	return 0
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the given timeout.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received, stopping HTTP server", "timeout", shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return gctx.Err()
	})

	return g.Wait()
}
