package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/pkg/logging"
)

const (
	// Key prefixes for Redis
	tableKeyPrefix   = "table:"
	tableIndexKey    = "tables"
	updateChanPrefix = "table:updates:"
)

// ErrTableNotFound is returned when a table is not found
var ErrTableNotFound = errors.New("table not found")

// Config holds configuration for the Redis table store
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisStore implements the Store interface using Redis
type redisStore struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed table store
func NewRedis(cfg *Config) (*redisStore, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{
		client: cfg.RedisClient,
	}, nil
}

// PersistTable writes the table document and notifies subscribers. The
// write replaces the previous document wholesale; concurrent writers race
// and the last one wins.
func (s *redisStore) PersistTable(ctx context.Context, input *PersistTableInput) error {
	if input == nil || input.Table == nil {
		return errors.New("input and table cannot be nil")
	}

	tableJSON, err := json.Marshal(input.Table)
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}

	pipe := s.client.Pipeline()

	tableKey := fmt.Sprintf("%s%s", tableKeyPrefix, input.Table.ID)
	pipe.Set(ctx, tableKey, tableJSON, 0)
	pipe.SAdd(ctx, tableIndexKey, input.Table.ID)

	// The published payload is the full document, so listeners never need a
	// follow-up fetch
	pipe.Publish(ctx, updateChanPrefix+input.Table.ID, tableJSON)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist table: %w", err)
	}

	return nil
}

// FetchTable retrieves a table by ID
func (s *redisStore) FetchTable(ctx context.Context, input *FetchTableInput) (*models.Table, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}

	tableKey := fmt.Sprintf("%s%s", tableKeyPrefix, input.TableID)
	tableJSON, err := s.client.Get(ctx, tableKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}

	var table models.Table
	if err := json.Unmarshal([]byte(tableJSON), &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table: %w", err)
	}

	return &table, nil
}

// DeleteTable removes a table and its index entry
func (s *redisStore) DeleteTable(ctx context.Context, input *DeleteTableInput) error {
	if input == nil || input.TableID == "" {
		return errors.New("input and table ID cannot be empty")
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf("%s%s", tableKeyPrefix, input.TableID))
	pipe.SRem(ctx, tableIndexKey, input.TableID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}

	return nil
}

// ListTables retrieves all known tables
func (s *redisStore) ListTables(ctx context.Context, input *ListTablesInput) (*ListTablesOutput, error) {
	tableIDs, err := s.client.SMembers(ctx, tableIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get table IDs: %w", err)
	}

	if len(tableIDs) == 0 {
		return &ListTablesOutput{Tables: []*models.Table{}}, nil
	}

	pipe := s.client.Pipeline()
	tableCommands := make(map[string]*redis.StringCmd)
	for _, tableID := range tableIDs {
		tableCommands[tableID] = pipe.Get(ctx, fmt.Sprintf("%s%s", tableKeyPrefix, tableID))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	tables := make([]*models.Table, 0, len(tableIDs))
	for tableID, cmd := range tableCommands {
		tableJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Table was deleted between listing the IDs and fetching it
				continue
			}
			return nil, fmt.Errorf("failed to get table %s: %w", tableID, err)
		}

		var table models.Table
		if err := json.Unmarshal([]byte(tableJSON), &table); err != nil {
			return nil, fmt.Errorf("failed to unmarshal table %s: %w", tableID, err)
		}
		tables = append(tables, &table)
	}

	return &ListTablesOutput{Tables: tables}, nil
}

// redisSubscription wraps a pub/sub channel for one table
type redisSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func (s *redisSubscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// Subscribe listens for writes to the table. Every write is delivered,
// including this client's own; callers debounce echoes by UpdatedAt.
func (s *redisStore) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}
	if input.OnChange == nil {
		return nil, errors.New("change callback cannot be nil")
	}

	subCtx, cancel := context.WithCancel(context.Background())
	pubsub := s.client.Subscribe(subCtx, updateChanPrefix+input.TableID)

	// Force the subscription to be established before returning, so a
	// Persist immediately after Subscribe is never missed
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to table %s: %w", input.TableID, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var table models.Table
			if err := json.Unmarshal([]byte(msg.Payload), &table); err != nil {
				logging.Warn("dropping malformed table update",
					zap.String("table_id", input.TableID),
					zap.Error(err))
				continue
			}
			input.OnChange(&table)
		}
	}()

	return &redisSubscription{pubsub: pubsub, cancel: cancel}, nil
}
