package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cemkoker/adisyon/internal/models"
)

const defaultSnapshotKey = "okey-adisyon-state-v1"

// ErrSnapshotNotFound is returned when no snapshot has been saved yet
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Config holds configuration for the Redis snapshot store
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Key overrides the storage key; defaults to the original document key
	Key string
}

// redisStore implements the Store interface using Redis
type redisStore struct {
	client *redis.Client
	key    string
}

// NewRedis creates a new Redis-backed snapshot store
func NewRedis(cfg *Config) (*redisStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultSnapshotKey
	}

	return &redisStore{
		client: cfg.RedisClient,
		key:    key,
	}, nil
}

// SaveSnapshot writes the full snapshot document
func (s *redisStore) SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error {
	if input == nil || input.Snapshot == nil {
		return errors.New("input and snapshot cannot be nil")
	}

	data, err := marshalSnapshot(input.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves and migrates the snapshot
func (s *redisStore) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.MatchSnapshot, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return unmarshalSnapshot([]byte(data))
}

// ClearSnapshot removes the snapshot
func (s *redisStore) ClearSnapshot(ctx context.Context, input *ClearSnapshotInput) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
