// Package redis keeps the cached weather snapshot as one JSON document in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store is the Redis-backed weather cache.
type Store struct {
	client *redis.Client
	key    string
}

// New connects to addr and verifies the server answers.
func New(ctx context.Context, addr, key string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: connect redis %s: %w", domain.ErrStoreUnavailable, addr, err)
	}
	return NewFromClient(client, key), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// ReadLatest returns the cached snapshot, or nil when the key does not exist.
func (s *Store) ReadLatest(ctx context.Context) (*domain.WeatherSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read latest: %w", domain.ErrStoreUnavailable, err)
	}

	var snap domain.WeatherSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode cached snapshot: %w", domain.ErrStoreUnavailable, err)
	}
	return &snap, nil
}

// Replace deletes and rewrites the key inside one MULTI/EXEC block.
func (s *Store) Replace(ctx context.Context, snap domain.WeatherSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", domain.ErrStoreUnavailable, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.Set(ctx, s.key, data, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: replace: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
