package weathersync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var belfast = &domain.Coordinates{Lat: 54.5973, Lon: -5.9301}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func snapshotAt(name string, observed time.Time) domain.WeatherSnapshot {
	deg := 200.0
	return domain.WeatherSnapshot{
		Name:        name,
		Conditions:  []domain.Condition{{Summary: "Clouds", Icon: "04d"}},
		Temperature: 12.3,
		Wind:        domain.Wind{Speed: 4.5, Degrees: &deg},
		Timestamp:   observed.Unix(),
	}
}

// memStore is an in-memory Store with failure injection.
type memStore struct {
	mu        sync.Mutex
	snap      *domain.WeatherSnapshot
	reads     int
	writes    int
	readErr   error
	replaceFn func() error
}

func (s *memStore) ReadLatest(context.Context) (*domain.WeatherSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.snap == nil {
		return nil, nil
	}
	c := s.snap.Clone()
	return &c, nil
}

func (s *memStore) Replace(_ context.Context, snap domain.WeatherSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceFn != nil {
		if err := s.replaceFn(); err != nil {
			return err
		}
	}
	s.writes++
	c := snap.Clone()
	s.snap = &c
	return nil
}

func (s *memStore) latest() *domain.WeatherSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// stubSource returns a fixed result and counts calls. When block is set the
// fetch waits for it or for the context.
type stubSource struct {
	mu    sync.Mutex
	calls int
	snap  domain.WeatherSnapshot
	err   error
	block chan struct{}
}

func (s *stubSource) Fetch(ctx context.Context, _ domain.Coordinates) (domain.WeatherSnapshot, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.WeatherSnapshot{}, &domain.RemoteError{Err: ctx.Err()}
		}
	}
	return s.snap, s.err
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []domain.WeatherSnapshot
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, _ domain.Coordinates, snap domain.WeatherSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, snap)
	return nil
}

type fixedGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (g fixedGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return g.result, g.err
}

var errRemote = &domain.RemoteError{StatusCode: 500, Err: errors.New("internal error")}

func newTestEngine(store Store, source Source, opts ...Option) *Engine {
	return New(store, source, observability.NewMetricsForTesting(), discardLogger(), opts...)
}

// collect runs a sync and returns the emitted outcomes.
func collect(ctx context.Context, e *Engine, at *domain.Coordinates) ([]domain.Outcome, error) {
	var out []domain.Outcome
	err := e.Run(ctx, at, func(o domain.Outcome) { out = append(out, o) })
	return out, err
}
