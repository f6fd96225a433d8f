// Package replication moves table documents between this process and the
// shared store. Conflicts are resolved by whoever writes last, at whole
// document granularity; there is no merge and no version check. When the
// remote store is unreachable the adapter degrades to the local store
// silently, trading multi-device sync for availability.
package replication

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/models"
	tableStore "github.com/cemkoker/adisyon/internal/repositories/table"
	"github.com/cemkoker/adisyon/pkg/logging"
)

// Config holds the adapter's two backing stores
type Config struct {
	// Primary is the shared store other devices see, usually redis
	Primary tableStore.Store

	// Fallback is the single-process local store used when the primary is
	// unreachable
	Fallback tableStore.Store
}

// Adapter synchronizes table documents with the shared store
type Adapter struct {
	primary  tableStore.Store
	fallback tableStore.Store
	degraded atomic.Bool
}

// New creates a replication adapter
func New(cfg *Config) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Primary == nil {
		return nil, errors.New("primary store cannot be nil")
	}
	if cfg.Fallback == nil {
		return nil, errors.New("fallback store cannot be nil")
	}

	return &Adapter{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
	}, nil
}

// Degraded reports whether the last push had to fall back to the local
// store. The only user-visible effect of degraded mode is that other
// devices stop seeing updates.
func (a *Adapter) Degraded() bool {
	return a.degraded.Load()
}

// Push writes the full table document. Replication failures never reach the
// caller: the write lands in the local store instead and the adapter marks
// itself degraded.
func (a *Adapter) Push(ctx context.Context, table *models.Table) {
	input := &tableStore.PersistTableInput{Table: table}

	if err := a.primary.PersistTable(ctx, input); err != nil {
		if !a.degraded.Swap(true) {
			logging.Warn("remote store unreachable, continuing single-device",
				zap.String("table_id", table.ID),
				zap.Error(err))
		}
		if err := a.fallback.PersistTable(ctx, input); err != nil {
			logging.Error("fallback store write failed",
				zap.String("table_id", table.ID),
				zap.Error(err))
		}
		return
	}

	a.degraded.Store(false)

	// Mirror into the local store so a later degraded pull still sees the
	// newest accepted state
	if err := a.fallback.PersistTable(ctx, input); err != nil {
		logging.Warn("local mirror write failed",
			zap.String("table_id", table.ID),
			zap.Error(err))
	}
}

// Pull fetches the authoritative table copy, used to seed local state when
// a client first attaches. Falls back to the local store when the primary
// is unreachable; ErrTableNotFound propagates.
func (a *Adapter) Pull(ctx context.Context, tableID string) (*models.Table, error) {
	table, err := a.primary.FetchTable(ctx, &tableStore.FetchTableInput{TableID: tableID})
	if err == nil {
		return table, nil
	}
	if errors.Is(err, tableStore.ErrTableNotFound) {
		return nil, err
	}

	logging.Warn("remote fetch failed, trying local store",
		zap.String("table_id", tableID),
		zap.Error(err))
	return a.fallback.FetchTable(ctx, &tableStore.FetchTableInput{TableID: tableID})
}

// List returns every table visible in the store
func (a *Adapter) List(ctx context.Context) ([]*models.Table, error) {
	out, err := a.primary.ListTables(ctx, &tableStore.ListTablesInput{})
	if err == nil {
		return out.Tables, nil
	}

	logging.Warn("remote list failed, trying local store", zap.Error(err))
	localOut, err := a.fallback.ListTables(ctx, &tableStore.ListTablesInput{})
	if err != nil {
		return nil, err
	}
	return localOut.Tables, nil
}

// Delete removes the table from both stores
func (a *Adapter) Delete(ctx context.Context, tableID string) error {
	input := &tableStore.DeleteTableInput{TableID: tableID}

	primaryErr := a.primary.DeleteTable(ctx, input)
	fallbackErr := a.fallback.DeleteTable(ctx, input)
	if primaryErr != nil {
		return primaryErr
	}
	return fallbackErr
}

// Subscribe registers onChange for every write to the table, including this
// client's own echoed writes; callers debounce echoes by the document's
// UpdatedAt. When the primary cannot deliver a subscription the local
// store's in-process broadcast is used instead.
func (a *Adapter) Subscribe(ctx context.Context, tableID string, onChange func(table *models.Table)) (tableStore.Subscription, error) {
	sub, err := a.primary.Subscribe(ctx, &tableStore.SubscribeInput{
		TableID:  tableID,
		OnChange: onChange,
	})
	if err == nil {
		return sub, nil
	}

	logging.Warn("remote subscribe failed, using in-process feed",
		zap.String("table_id", tableID),
		zap.Error(err))
	return a.fallback.Subscribe(ctx, &tableStore.SubscribeInput{
		TableID:  tableID,
		OnChange: onChange,
	})
}
