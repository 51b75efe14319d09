package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot(name string, ts int64) domain.WeatherSnapshot {
	deg := 230.0
	return domain.WeatherSnapshot{
		Name: name,
		Conditions: []domain.Condition{
			{Summary: "Rain", Icon: "10d"},
			{Summary: "Mist", Icon: "50d"},
			{Summary: "Fog", Icon: "50n"},
		},
		Temperature: 11.56,
		Wind:        domain.Wind{Speed: 5.14, Degrees: &deg},
		Timestamp:   ts,
	}
}

func TestStore_ReadLatest_Empty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ReadLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := sampleSnapshot("Belfast", 1700000000)

	require.NoError(t, s.Replace(ctx, want))

	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RoundTrip_EmptyConditionsStayNonNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := domain.WeatherSnapshot{
		Name:        "Belfast",
		Conditions:  []domain.Condition{},
		Temperature: 9.5,
		Timestamp:   1700000000,
	}

	require.NoError(t, s.Replace(ctx, want))

	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Conditions)
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RoundTrip_NoOptionalFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := domain.WeatherSnapshot{Temperature: -3.2, Wind: domain.Wind{Speed: 0}, Timestamp: 1700000000}

	require.NoError(t, s.Replace(ctx, want))

	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(want, *got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ReplaceOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, sampleSnapshot("Belfast", 1700000000)))
	second := domain.WeatherSnapshot{
		Name:        "Derry",
		Conditions:  []domain.Condition{{Summary: "Clear", Icon: "01d"}},
		Temperature: 14,
		Timestamp:   1700003600,
	}
	require.NoError(t, s.Replace(ctx, second))

	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(second, *got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	var rows, conditions int64
	require.NoError(t, s.db.Model(&snapshotRow{}).Count(&rows).Error)
	require.NoError(t, s.db.Model(&conditionRow{}).Count(&conditions).Error)
	assert.Equal(t, int64(1), rows, "only one snapshot row may exist")
	assert.Equal(t, int64(1), conditions, "old conditions must be removed")
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")
	ctx := context.Background()
	want := sampleSnapshot("Belfast", 1700000000)

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, want))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.ReadLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Len(t, got.Conditions, 3)
}

func TestStore_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Replace(ctx, sampleSnapshot("A", 1700000000)))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 20 {
			name := "A"
			if i%2 == 1 {
				name = "B"
			}
			assert.NoError(t, s.Replace(ctx, sampleSnapshot(name, 1700000000+int64(i))))
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			got, err := s.ReadLatest(ctx)
			if !assert.NoError(t, err) || !assert.NotNil(t, got) {
				return
			}
			assert.Len(t, got.Conditions, 3, "reader observed a partial replace")
		}
	}()
	wg.Wait()
}

func TestStore_ClosedStoreReportsUnavailable(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ReadLatest(context.Background())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = s.Replace(context.Background(), sampleSnapshot("Belfast", 1700000000))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	require.ErrorIs(t, s.Ping(context.Background()), domain.ErrStoreUnavailable)
}
