package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside the WGS-84 range, NaN included.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Condition is one entry of the provider's condition list.
type Condition struct {
	Summary string `json:"summary"`
	Icon    string `json:"icon"`
}

// Wind holds speed in the configured unit system and an optional direction.
type Wind struct {
	Speed   float64  `json:"speed"`
	Degrees *float64 `json:"deg,omitempty"`
}

// WeatherSnapshot is one complete weather observation. A snapshot is never
// merged with another one: a successful sync replaces the cached snapshot
// as a whole.
type WeatherSnapshot struct {
	Name        string      `json:"name,omitempty"`
	Conditions  []Condition `json:"conditions"`
	Temperature float64     `json:"temperature"`
	Wind        Wind        `json:"wind"`
	Timestamp   int64       `json:"dt"` // seconds since epoch, UTC
}

var errMissingTimestamp = errors.New("snapshot has no observation timestamp")

// Validate checks the fields a snapshot must carry to be cached.
func (s WeatherSnapshot) Validate() error {
	if s.Timestamp <= 0 {
		return errMissingTimestamp
	}
	return nil
}

// ObservedAt returns the observation time in UTC.
func (s WeatherSnapshot) ObservedAt() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// Fresh reports whether the snapshot is inside the freshness window.
func (s WeatherSnapshot) Fresh() bool {
	return IsFresh(s.ObservedAt())
}

// PrimaryCondition returns the first condition entry, if any.
func (s WeatherSnapshot) PrimaryCondition() (Condition, bool) {
	if len(s.Conditions) == 0 {
		return Condition{}, false
	}
	return s.Conditions[0], true
}

// Clone returns a deep copy so callers cannot alias the cached value.
func (s WeatherSnapshot) Clone() WeatherSnapshot {
	out := s
	if s.Conditions != nil {
		out.Conditions = append([]Condition(nil), s.Conditions...)
	}
	if s.Wind.Degrees != nil {
		deg := *s.Wind.Degrees
		out.Wind.Degrees = &deg
	}
	return out
}
