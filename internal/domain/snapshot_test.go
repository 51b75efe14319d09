package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinates_Validate(t *testing.T) {
	require.NoError(t, Coordinates{Lat: 54.6, Lon: -5.93}.Validate())
	require.NoError(t, Coordinates{Lat: -90, Lon: 180}.Validate())

	err := Coordinates{Lat: 91}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	err = Coordinates{Lon: -180.5}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")

	err = Coordinates{Lat: math.NaN(), Lon: 0}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")

	err = Coordinates{Lat: 0, Lon: math.NaN()}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitude")

	require.Error(t, Coordinates{Lat: math.Inf(1), Lon: 0}.Validate())
	require.Error(t, Coordinates{Lat: 0, Lon: math.Inf(-1)}.Validate())
}

func TestWeatherSnapshot_Clone(t *testing.T) {
	orig := WeatherSnapshot{
		Name:       "Belfast",
		Conditions: []Condition{{Summary: "Rain", Icon: "10d"}},
		Wind:       Wind{Speed: 4.1, Degrees: deg(200)},
		Timestamp:  1714144200,
	}

	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Conditions[0].Summary = "Clear"
	*clone.Wind.Degrees = 10
	assert.Equal(t, "Rain", orig.Conditions[0].Summary)
	assert.InDelta(t, 200.0, *orig.Wind.Degrees, 0.0001)
}

func TestWeatherSnapshot_Validate(t *testing.T) {
	require.NoError(t, WeatherSnapshot{Timestamp: 1}.Validate())
	assert.Error(t, WeatherSnapshot{}.Validate())
}

func TestOutcomeConstructors(t *testing.T) {
	snap := WeatherSnapshot{Name: "Belfast", Timestamp: 1}

	r := Refreshing(true)
	assert.Equal(t, OutcomeRefreshing, r.Kind)
	assert.True(t, r.Refreshing)
	assert.Nil(t, r.Snapshot)

	s := Success(snap)
	assert.Equal(t, OutcomeSuccess, s.Kind)
	require.NotNil(t, s.Snapshot)
	assert.Equal(t, "Belfast", s.Snapshot.Name)

	cause := &RemoteError{StatusCode: 500, Err: errors.New("boom")}
	f := Failure(cause, nil)
	assert.Equal(t, OutcomeError, f.Kind)
	assert.Nil(t, f.Snapshot)
	assert.Equal(t, "error", f.Kind.String())
}

func TestErrors(t *testing.T) {
	wrapped := &RemoteError{Err: ErrNoConnection}
	assert.True(t, IsNoConnection(wrapped))
	assert.False(t, IsNoConnection(&RemoteError{StatusCode: 502, Err: errors.New("bad gateway")}))
	assert.Contains(t, (&RemoteError{StatusCode: 502, Err: errors.New("bad gateway")}).Error(), "502")

	var re *RemoteError
	assert.True(t, errors.As(error(wrapped), &re))
}
