package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/weather-sync-service/internal/adapter/http"
	"github.com/couchcryptid/weather-sync-service/internal/app"
	"github.com/couchcryptid/weather-sync-service/internal/config"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
	"github.com/couchcryptid/weather-sync-service/internal/scheduler"
	"github.com/couchcryptid/weather-sync-service/internal/viewmodel"
	"github.com/joho/godotenv"
)

// readiness passes only when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to build sync stack", "error", err)
		os.Exit(1)
	}

	vm := viewmodel.New(a.Engine, a.Resources, metrics, logger)
	sched := scheduler.New(vm, cfg.Location, cfg.SyncInterval, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, vm, cfg.Location, readiness{vm, a}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the view model loop before anything asks it to sync.
	go func() {
		if err := vm.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("view model error", "error", err)
		}
	}()

	go logStates(ctx, vm, logger)

	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("adapter close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func logStates(ctx context.Context, vm *viewmodel.ViewModel, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-vm.Updates():
			logger.Debug("weather state",
				"location", s.Location,
				"temperature", s.Temperature,
				"refreshing", s.Refreshing,
				"no_data", s.NoData,
				"events", len(s.Events),
			)
		}
	}
}
