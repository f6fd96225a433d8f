package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/common/clock"
	"github.com/cemkoker/adisyon/internal/common/uuid"
	"github.com/cemkoker/adisyon/internal/config"
	"github.com/cemkoker/adisyon/internal/handlers/httpapi"
	"github.com/cemkoker/adisyon/internal/replication"
	"github.com/cemkoker/adisyon/internal/repositories/snapshot"
	tableStore "github.com/cemkoker/adisyon/internal/repositories/table"
	scoreService "github.com/cemkoker/adisyon/internal/services/score"
	tableService "github.com/cemkoker/adisyon/internal/services/table"
	"github.com/cemkoker/adisyon/pkg/logging"
)

func main() {
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.LocalDataDir, 0o755); err != nil {
		logging.Fatal("failed to create data directory", zap.Error(err))
	}

	// The local store always exists; with the redis strategy it serves as
	// the offline fallback behind the replication adapter.
	localTables, err := tableStore.NewLocal(&tableStore.LocalConfig{
		FilePath: filepath.Join(cfg.LocalDataDir, "tables.json"),
	})
	if err != nil {
		logging.Fatal("failed to create local table store", zap.Error(err))
	}

	var primary tableStore.Store = localTables
	var snapshots snapshot.Store

	switch cfg.Store {
	case config.StoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Fatal("failed to connect to Redis", zap.Error(err))
		}

		primary, err = tableStore.NewRedis(&tableStore.Config{
			RedisClient: redisClient,
		})
		if err != nil {
			logging.Fatal("failed to create table store", zap.Error(err))
		}

		snapshots, err = snapshot.NewRedis(&snapshot.Config{
			RedisClient: redisClient,
			Key:         cfg.SnapshotKey,
		})
		if err != nil {
			logging.Fatal("failed to create snapshot store", zap.Error(err))
		}

	case config.StoreLocal:
		snapshots, err = snapshot.NewLocal(&snapshot.LocalConfig{
			FilePath: filepath.Join(cfg.LocalDataDir, cfg.SnapshotKey+".json"),
		})
		if err != nil {
			logging.Fatal("failed to create snapshot store", zap.Error(err))
		}
	}

	replicator, err := replication.New(&replication.Config{
		Primary:  primary,
		Fallback: localTables,
	})
	if err != nil {
		logging.Fatal("failed to create replication adapter", zap.Error(err))
	}

	tableSvc, err := tableService.New(&tableService.Config{
		Replicator:         replicator,
		Clock:              &clock.DefaultClock{},
		UUIDGenerator:      uuid.New(),
		PresenceTimeout:    cfg.PresenceTimeout,
		CleanupGracePeriod: cfg.CleanupGracePeriod,
	})
	if err != nil {
		logging.Fatal("failed to create table service", zap.Error(err))
	}

	scoreSvc, err := scoreService.New(context.Background(), &scoreService.Config{
		SnapshotStore: snapshots,
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: uuid.New(),
	})
	if err != nil {
		logging.Fatal("failed to create score service", zap.Error(err))
	}

	api, err := httpapi.New(&httpapi.Config{
		ScoreService: scoreSvc,
		TableService: tableSvc,
	})
	if err != nil {
		logging.Fatal("failed to create API handler", zap.Error(err))
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go tableSvc.RunSweeper(sweepCtx, cfg.SweepInterval)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(),
	}

	go func() {
		logging.Info("server listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", string(cfg.Store)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("error shutting down server", zap.Error(err))
	}

	logging.Info("server has been shut down")
}
