package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cemkoker/adisyon/internal/models"
)

// StoreStrategy selects where table documents live.
type StoreStrategy string

const (
	// StoreRedis keeps tables in Redis and pushes updates over pub/sub
	StoreRedis StoreStrategy = "redis"

	// StoreLocal keeps tables in an on-disk JSON file, single process only
	StoreLocal StoreStrategy = "local"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the HTTP listen address
	Addr string

	// Store selects the shared table store backend
	Store StoreStrategy

	// RedisAddr is the Redis server address, used when Store is redis
	RedisAddr string

	// RedisPassword is the Redis password, empty for none
	RedisPassword string

	// RedisDB is the Redis database number
	RedisDB int

	// LocalDataDir is where the local store and snapshots are written
	LocalDataDir string

	// SnapshotKey names the persisted match snapshot
	SnapshotKey string

	// SweepInterval is how often the presence sweeper runs
	SweepInterval time.Duration

	// PresenceTimeout is how long a silent slot stays online
	PresenceTimeout time.Duration

	// CleanupGracePeriod is how long an all-offline table survives
	CleanupGracePeriod time.Duration
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// Missing .env is fine, the environment still applies
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("STORE", string(StoreRedis))
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCAL_DATA_DIR", "./data")
	v.SetDefault("SNAPSHOT_KEY", "okey-adisyon-state-v1")
	v.SetDefault("SWEEP_INTERVAL", models.SweepInterval.String())
	v.SetDefault("PRESENCE_TIMEOUT", models.PresenceTimeout.String())
	v.SetDefault("CLEANUP_GRACE_PERIOD", models.CleanupGracePeriod.String())

	cfg := &Config{
		Addr:          v.GetString("ADDR"),
		Store:         StoreStrategy(v.GetString("STORE")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		LocalDataDir:  v.GetString("LOCAL_DATA_DIR"),
		SnapshotKey:   v.GetString("SNAPSHOT_KEY"),
	}

	var err error
	if cfg.SweepInterval, err = time.ParseDuration(v.GetString("SWEEP_INTERVAL")); err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	if cfg.PresenceTimeout, err = time.ParseDuration(v.GetString("PRESENCE_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid PRESENCE_TIMEOUT: %w", err)
	}
	if cfg.CleanupGracePeriod, err = time.ParseDuration(v.GetString("CLEANUP_GRACE_PERIOD")); err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_GRACE_PERIOD: %w", err)
	}

	switch cfg.Store {
	case StoreRedis, StoreLocal:
	default:
		return nil, fmt.Errorf("unknown STORE %q, want %q or %q", cfg.Store, StoreRedis, StoreLocal)
	}

	return cfg, nil
}
