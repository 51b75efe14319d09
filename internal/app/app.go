// Package app wires the sync engine and its adapters from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkaadapter "github.com/couchcryptid/weather-sync-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-sync-service/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-sync-service/internal/adapter/netcheck"
	"github.com/couchcryptid/weather-sync-service/internal/adapter/openweather"
	redisstore "github.com/couchcryptid/weather-sync-service/internal/adapter/redis"
	"github.com/couchcryptid/weather-sync-service/internal/adapter/sqlite"
	"github.com/couchcryptid/weather-sync-service/internal/config"
	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/i18n"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
	"github.com/couchcryptid/weather-sync-service/internal/weathersync"
)

const (
	storeAttempts   = 5
	storeBackoff    = 200 * time.Millisecond
	storeMaxBackoff = 5 * time.Second
)

// Store is the snapshot cache together with its lifecycle hooks.
type Store interface {
	weathersync.Store
	Ping(ctx context.Context) error
	io.Closer
}

// App holds the wired sync stack.
type App struct {
	Store     Store
	Engine    *weathersync.Engine
	Resources *i18n.Catalog

	closers []io.Closer
	logger  *slog.Logger
}

// Build opens the configured store and assembles the sync engine. The caller
// must Close the returned App.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*App, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Store: store, logger: logger}
	a.closers = append(a.closers, store)

	conn := netcheck.New(cfg.ConnectivityAddr, cfg.ConnectivityTimeout)
	source := openweather.NewClient(openweather.Config{
		APIKey:  cfg.OpenWeatherAPIKey,
		BaseURL: cfg.OpenWeatherBaseURL,
		Units:   cfg.OpenWeatherUnits,
		Timeout: cfg.OpenWeatherTimeout,
	}, conn, metrics, logger)

	var opts []weathersync.Option
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts = append(opts, weathersync.WithGeocoder(mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.KafkaEnabled() {
		pub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSnapshotTopic, logger)
		opts = append(opts, weathersync.WithPublisher(pub))
		a.closers = append(a.closers, pub)
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	}

	a.Engine = weathersync.New(store, source, metrics, logger, opts...)
	a.Resources = i18n.New(i18n.DetectLocale(cfg.Locale, cfg.Timezone), cfg.OpenWeatherUnits)
	return a, nil
}

// CheckReadiness reports whether the snapshot store is reachable.
func (a *App) CheckReadiness(ctx context.Context) error {
	return a.Store.Ping(ctx)
}

// Close releases every adapter in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("close error", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStore opens the configured backend, retrying with exponential backoff
// while the backend is unreachable.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	backoff := storeBackoff
	var lastErr error
	for attempt := 1; attempt <= storeAttempts; attempt++ {
		store, err := dialStore(ctx, cfg)
		if err == nil {
			logger.Info("snapshot store ready", "backend", cfg.StoreBackend)
			return store, nil
		}
		lastErr = err
		logger.Warn("snapshot store unavailable", "backend", cfg.StoreBackend, "attempt", attempt, "error", err)
		if attempt == storeAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, storeMaxBackoff)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, lastErr)
}

func dialStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		s, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrStoreUnavailable, cfg.StoreBackend)
	}
}
