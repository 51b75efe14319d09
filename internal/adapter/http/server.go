package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/viewmodel"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WeatherView is the view model surface the HTTP API needs.
type WeatherView interface {
	Current() viewmodel.State
	Sync(ctx context.Context, at *domain.Coordinates) error
	DrainEvents() []viewmodel.Event
}

// Server exposes the weather API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	view       WeatherView
	location   *domain.Coordinates
	logger     *slog.Logger
}

// NewServer creates an HTTP server. location is the default sync coordinate
// used when a sync request carries none; it may be nil.
func NewServer(addr string, view WeatherView, location *domain.Coordinates, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		view:     view,
		location: location,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/weather", s.handleState)
	mux.HandleFunc("POST /v1/weather/sync", s.handleSync)
	mux.HandleFunc("GET /v1/weather/events", s.handleEvents)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.view.Current())
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	at, err := parseCoordinates(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if at == nil {
		at = s.location
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.view.Sync(ctx, at); err != nil {
		s.logger.Error("sync request rejected", "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"status": "accepted"}
	if at != nil {
		resp["coordinates"] = at
	}
	sharedobs.WriteJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	events := s.view.DrainEvents()
	if events == nil {
		events = []viewmodel.Event{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// parseCoordinates reads optional lat/lon query parameters. Both or neither
// must be present.
func parseCoordinates(r *http.Request) (*domain.Coordinates, error) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("lat and lon must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon %q", lonStr)
	}
	c := domain.Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
