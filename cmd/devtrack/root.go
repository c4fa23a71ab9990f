package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/devtrack/internal/api"
	"github.com/hyperengineering/devtrack/internal/blob"
	"github.com/hyperengineering/devtrack/internal/config"
	"github.com/hyperengineering/devtrack/internal/logging"
	"github.com/hyperengineering/devtrack/internal/recurring"
	"github.com/hyperengineering/devtrack/internal/store"
	"github.com/hyperengineering/devtrack/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// dbPathOverride is the --db flag shared by every command.
var dbPathOverride string

var rootCmd = &cobra.Command{
	Use:          "devtrack",
	Short:        "devtrack - indie game development tracker",
	Long:         "Runs the devtrack HTTP service. Subcommands work on the database directly.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathOverride, "db", "",
		"Database path (overrides config and DEVTRACK_DB_PATH)")

	rootCmd.AddCommand(recurringCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(flowCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPathOverride != "" {
		cfg.Database.Path = dbPathOverride
	}

	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()
	slog.Info("configuration loaded", "level", cfg.Log.Level, "format", cfg.Log.Format)
	if cfg.Auth.APIKey == "" && cfg.Auth.APIKeyHash == "" {
		slog.Warn("admin API is unauthenticated (dev mode)")
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	uploader, err := blob.NewUploader(cfg.Storage)
	if err != nil {
		db.Close()
		return err
	}
	slog.Info("blob storage initialized", "backend", fmt.Sprintf("%T", uploader))

	clock := recurring.RealClock{}
	handler := api.NewHandler(db, api.Options{
		Uploader:        uploader,
		Verifier:        api.NewKeyVerifier(cfg.Auth.APIKey, cfg.Auth.APIKeyHash),
		Clock:           clock,
		Version:         Version,
		ProjectName:     cfg.Project.Name,
		Currency:        cfg.Project.Currency,
		FundingURL:      cfg.Project.FundingURL,
		DefaultLinkedIn: cfg.Project.DefaultLinkedInURL,
		CORSOrigins:     cfg.Project.CORSOrigins,
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	var wg sync.WaitGroup
	if interval := time.Duration(cfg.Worker.RecurringInterval); interval > 0 {
		w := worker.NewRecurringCostWorker(recurring.NewProcessor(db, clock), interval)
		startWorker(ctx, &wg, "recurring-costs", w.Run)
	}

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Drain in-flight requests, then workers, then the store.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	wg.Wait()
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
