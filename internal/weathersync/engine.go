// Package weathersync merges the cached snapshot and a remote fetch into an
// ordered stream of sync outcomes.
package weathersync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
)

// Store is the single-record snapshot cache.
type Store interface {
	ReadLatest(ctx context.Context) (*domain.WeatherSnapshot, error)
	Replace(ctx context.Context, snap domain.WeatherSnapshot) error
}

// Source fetches current weather for a coordinate.
type Source interface {
	Fetch(ctx context.Context, at domain.Coordinates) (domain.WeatherSnapshot, error)
}

// Publisher receives every freshly synced snapshot.
type Publisher interface {
	Publish(ctx context.Context, at domain.Coordinates, snap domain.WeatherSnapshot) error
}

// Engine runs weather syncs. It holds no per-sync state, so overlapping runs
// are safe; ordering between them is the caller's concern.
type Engine struct {
	store     Store
	source    Source
	geocoder  domain.Geocoder
	publisher Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithGeocoder fills missing location names by reverse geocoding.
func WithGeocoder(g domain.Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

// WithPublisher forwards every freshly synced snapshot.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// New creates an Engine.
func New(store Store, source Source, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs one sync and calls emit for each outcome, in order:
//
//  1. Success(cached) if the cache holds a fresh snapshot;
//  2. nothing more when at is nil;
//  3. Refreshing(true), then the remote fetch, then Refreshing(false);
//  4. Success(new) after the cache was replaced, or Error(cause, cached) where
//     cached is set only if the cache is fresh at that moment.
//
// Remote failures are reported as outcomes and never returned. A store
// failure aborts the run and is returned wrapped in domain.ErrStoreUnavailable.
// When ctx is cancelled the run is abandoned: nothing more is emitted, no
// cache write is started, and ctx.Err() is returned.
func (e *Engine) Run(ctx context.Context, at *domain.Coordinates, emit func(domain.Outcome)) error {
	e.metrics.SyncRuns.Inc()

	send := func(o domain.Outcome) bool {
		if ctx.Err() != nil {
			return false
		}
		e.metrics.SyncOutcomes.WithLabelValues(o.Kind.String()).Inc()
		emit(o)
		return true
	}

	cached, err := e.readFresh(ctx)
	if err != nil {
		return e.abort(ctx, "read cache", err)
	}
	if cached != nil && !send(domain.Success(*cached)) {
		return ctx.Err()
	}

	if at == nil {
		e.logger.Debug("no coordinates, cache-only sync", "cached", cached != nil)
		return nil
	}

	if !send(domain.Refreshing(true)) {
		return ctx.Err()
	}
	snap, fetchErr := e.source.Fetch(ctx, *at)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	send(domain.Refreshing(false))

	if fetchErr != nil {
		return e.reconcile(ctx, fetchErr, send)
	}

	snap = domain.EnrichLocationName(ctx, snap, *at, e.geocoder, e.logger)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := e.store.Replace(ctx, snap); err != nil {
		return e.abort(ctx, "replace cache", err)
	}
	e.metrics.CacheWrites.Inc()

	if !send(domain.Success(snap)) {
		return ctx.Err()
	}
	e.publish(ctx, *at, snap)
	return nil
}

// reconcile turns a failed fetch into an Error outcome carrying the cached
// snapshot when it is still fresh.
func (e *Engine) reconcile(ctx context.Context, cause error, send func(domain.Outcome) bool) error {
	e.logger.Warn("remote fetch failed",
		"error", cause,
		"no_connection", domain.IsNoConnection(cause),
	)

	cached, err := e.readFresh(ctx)
	if err != nil {
		return e.abort(ctx, "reconcile cache", err)
	}
	if !send(domain.Failure(cause, cached)) {
		return ctx.Err()
	}
	return nil
}

// readFresh returns the cached snapshot if it is fresh, nil otherwise.
func (e *Engine) readFresh(ctx context.Context) (*domain.WeatherSnapshot, error) {
	cached, err := e.store.ReadLatest(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case cached == nil:
		e.metrics.CacheReads.WithLabelValues("empty").Inc()
		return nil, nil
	case !cached.Fresh():
		e.metrics.CacheReads.WithLabelValues("stale").Inc()
		return nil, nil
	default:
		e.metrics.CacheReads.WithLabelValues("fresh").Inc()
		return cached, nil
	}
}

func (e *Engine) abort(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.metrics.SyncAborted.Inc()
	e.logger.Error("sync aborted", "op", op, "error", err)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		return errors.Join(domain.ErrStoreUnavailable, err)
	}
	return err
}

func (e *Engine) publish(ctx context.Context, at domain.Coordinates, snap domain.WeatherSnapshot) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, at, snap); err != nil {
		e.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		e.logger.Warn("publish snapshot failed", "error", err)
		return
	}
	e.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
}
