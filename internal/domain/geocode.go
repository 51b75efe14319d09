package domain

import (
	"context"
	"log/slog"
)

// EnrichLocationName fills in a missing location name by reverse geocoding the
// coordinate the snapshot was fetched for. A snapshot that already has a name,
// a nil geocoder or a failed lookup leaves the snapshot unchanged (graceful
// degradation).
func EnrichLocationName(ctx context.Context, snap WeatherSnapshot, at Coordinates, geocoder Geocoder, logger *slog.Logger) WeatherSnapshot {
	if geocoder == nil || snap.Name != "" {
		return snap
	}

	result, err := geocoder.ReverseGeocode(ctx, at.Lat, at.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", at.Lat,
			"lon", at.Lon,
			"error", err,
		)
		return snap
	}

	switch {
	case result.PlaceName != "":
		snap.Name = result.PlaceName
	case result.FormattedAddress != "":
		snap.Name = result.FormattedAddress
	}
	return snap
}
