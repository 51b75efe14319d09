package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey      = "owm-test-key"
	testMapboxToken = "pk.test-token"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", testAPIKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testAPIKey, cfg.OpenWeatherAPIKey)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "metric", cfg.OpenWeatherUnits)
	assert.Zero(t, cfg.OpenWeatherTimeout)
	assert.Equal(t, "api.openweathermap.org:443", cfg.ConnectivityAddr)
	assert.Equal(t, 2*time.Second, cfg.ConnectivityTimeout)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, "weather.db", cfg.SQLitePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "weather:snapshot:latest", cfg.RedisKey)
	assert.Nil(t, cfg.Location)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
	assert.Equal(t, time.Local, cfg.Timezone)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "weather-snapshots", cfg.KafkaSnapshotTopic)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("OPENWEATHER_BASE_URL", "http://localhost:9999/data/2.5/")
	t.Setenv("OPENWEATHER_UNITS", "imperial")
	t.Setenv("OPENWEATHER_TIMEOUT", "20s")
	t.Setenv("CONNECTIVITY_ADDR", "1.1.1.1:53")
	t.Setenv("CONNECTIVITY_TIMEOUT", "500ms")
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_KEY", "wx:latest")
	t.Setenv("LOCATION_LAT", "54.5973")
	t.Setenv("LOCATION_LON", "-5.9301")
	t.Setenv("SYNC_INTERVAL", "0s")
	t.Setenv("LOCALE", "de-DE")
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "wx")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:9999/data/2.5", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "imperial", cfg.OpenWeatherUnits)
	assert.Equal(t, 20*time.Second, cfg.OpenWeatherTimeout)
	assert.Equal(t, "1.1.1.1:53", cfg.ConnectivityAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectivityTimeout)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "wx:latest", cfg.RedisKey)
	assert.Equal(t, &domain.Coordinates{Lat: 54.5973, Lon: -5.9301}, cfg.Location)
	assert.Zero(t, cfg.SyncInterval)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, "Europe/London", cfg.Timezone.String())
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "wx", cfg.KafkaSnapshotTopic)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHER_API_KEY")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"OPENWEATHER_TIMEOUT", "CONNECTIVITY_TIMEOUT", "SYNC_INTERVAL", "MAPBOX_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ZeroConnectivityTimeoutRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("CONNECTIVITY_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONNECTIVITY_TIMEOUT")
}

func TestLoad_InvalidUnits(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENWEATHER_UNITS", "kelvin")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENWEATHER_UNITS")
}

func TestLoad_InvalidStoreBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", "realm")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoad_LocationRequiresBothCoordinates(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCATION_LAT", "54.6")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCATION_LON")
}

func TestLoad_LocationOutOfRange(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCATION_LAT", "95")
	t.Setenv("LOCATION_LON", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	setRequired(t)
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	setRequired(t)
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
