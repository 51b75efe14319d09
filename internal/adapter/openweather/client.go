// Package openweather fetches current conditions from the OpenWeatherMap
// "current weather" endpoint.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Connectivity reports whether a network path is available right now.
type Connectivity interface {
	Connected(ctx context.Context) bool
}

// ConnectivityFunc adapts a plain function to Connectivity.
type ConnectivityFunc func(ctx context.Context) bool

func (f ConnectivityFunc) Connected(ctx context.Context) bool { return f(ctx) }

// Config carries the endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string
	Units   string
	Timeout time.Duration // 0 means no client timeout
}

// Client performs a single fetch attempt per call. Repeated failures trip a
// circuit breaker that rejects calls until it half-opens again.
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	conn       Connectivity
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(cfg Config, conn Connectivity, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		units:      cfg.Units,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		conn:       conn,
		circuit:    newCircuitBreaker(logger),
		metrics:    metrics,
		logger:     logger,
	}
}

func newCircuitBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller giving up is not a sign of an unhealthy upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// Fetch returns the current weather at c. It fails with domain.ErrNoConnection
// when no network path is available (no request is made) and with a
// *domain.RemoteError for any other failure.
func (c *Client) Fetch(ctx context.Context, at domain.Coordinates) (domain.WeatherSnapshot, error) {
	if c.conn != nil && !c.conn.Connected(ctx) {
		c.metrics.RemoteRequests.WithLabelValues("no_connection").Inc()
		return domain.WeatherSnapshot{}, domain.ErrNoConnection
	}

	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.do(ctx, at)
	})
	c.metrics.RemoteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var remote *domain.RemoteError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.metrics.RemoteRequests.WithLabelValues("circuit_open").Inc()
			return domain.WeatherSnapshot{}, &domain.RemoteError{Err: err}
		case errors.As(err, &remote):
			c.metrics.RemoteRequests.WithLabelValues(remoteLabel(remote)).Inc()
			return domain.WeatherSnapshot{}, remote
		default:
			c.metrics.RemoteRequests.WithLabelValues("transport_error").Inc()
			return domain.WeatherSnapshot{}, &domain.RemoteError{Err: err}
		}
	}

	c.metrics.RemoteRequests.WithLabelValues("success").Inc()
	snap, _ := result.(domain.WeatherSnapshot)
	return snap, nil
}

func (c *Client) do(ctx context.Context, at domain.Coordinates) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {c.units},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherSnapshot{}, &domain.RemoteError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, &domain.RemoteError{Err: fmt.Errorf("weather request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.WeatherSnapshot{}, &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", body),
		}
	}

	var payload currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.WeatherSnapshot{}, &domain.RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", errDecode, err)}
	}
	snap := payload.snapshot()
	if err := snap.Validate(); err != nil {
		return domain.WeatherSnapshot{}, &domain.RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", errDecode, err)}
	}
	return snap, nil
}

var errDecode = errors.New("decode response")

func remoteLabel(err *domain.RemoteError) string {
	switch {
	case errors.Is(err, errDecode):
		return "decode_error"
	case err.StatusCode != 0:
		return "http_error"
	default:
		return "transport_error"
	}
}
