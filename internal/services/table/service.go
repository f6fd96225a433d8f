// Package table implements the registry of shared tables: roster and
// presence management, match embedding, replication, and garbage collection
// of abandoned tables.
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/common/clock"
	"github.com/cemkoker/adisyon/internal/common/uuid"
	"github.com/cemkoker/adisyon/internal/match"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/replication"
	tableStore "github.com/cemkoker/adisyon/internal/repositories/table"
	"github.com/cemkoker/adisyon/pkg/logging"
)

// service implements the Service interface
type service struct {
	replicator *replication.Adapter
	clock      clock.Clock
	uuids      uuid.UUID

	presenceTimeout time.Duration
	cleanupGrace    time.Duration

	// Single-writer discipline per table: every mutation of a table
	// document happens under that table's lock, so a presence sweep and a
	// concurrent join cannot clobber each other's slots.
	mu         sync.Mutex
	tableLocks map[string]*sync.Mutex
	lastWrites map[string]time.Time
	gcTimers   map[string]*time.Timer
}

// New creates a new table service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Replicator == nil {
		return nil, ErrNilReplicator
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	presenceTimeout := cfg.PresenceTimeout
	if presenceTimeout == 0 {
		presenceTimeout = models.PresenceTimeout
	}
	cleanupGrace := cfg.CleanupGracePeriod
	if cleanupGrace == 0 {
		cleanupGrace = models.CleanupGracePeriod
	}

	return &service{
		replicator:      cfg.Replicator,
		clock:           cfg.Clock,
		uuids:           cfg.UUIDGenerator,
		presenceTimeout: presenceTimeout,
		cleanupGrace:    cleanupGrace,
		tableLocks:      make(map[string]*sync.Mutex),
		lastWrites:      make(map[string]time.Time),
		gcTimers:        make(map[string]*time.Timer),
	}, nil
}

func (s *service) lockFor(tableID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.tableLocks[tableID]
	if !ok {
		lock = &sync.Mutex{}
		s.tableLocks[tableID] = lock
	}
	return lock
}

// push stamps UpdatedAt, records the write for echo debouncing, and hands
// the document to the replicator. Must be called with the table's lock held.
func (s *service) push(ctx context.Context, table *models.Table) {
	now := s.clock.Now()
	table.UpdatedAt = now

	s.mu.Lock()
	s.lastWrites[table.ID] = now
	s.mu.Unlock()

	s.replicator.Push(ctx, table)
}

// mutate applies fn to the table's current document under its lock and
// replicates the result.
func (s *service) mutate(ctx context.Context, tableID string, fn func(table *models.Table) error) (*models.Table, error) {
	lock := s.lockFor(tableID)
	lock.Lock()
	defer lock.Unlock()

	table, err := s.replicator.Pull(ctx, tableID)
	if err != nil {
		if errors.Is(err, tableStore.ErrTableNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	if err := fn(table); err != nil {
		if errors.Is(err, errNoChange) {
			return table.Clone(), nil
		}
		return nil, err
	}

	s.push(ctx, table)
	return table.Clone(), nil
}

// CreateTable allocates a table with the default slot layout, the creator
// online in slot 0 as host, and a fresh unconfigured match embedded.
func (s *service) CreateTable(ctx context.Context, input *CreateTableInput) (*CreateTableOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	now := s.clock.Now()
	hostName := input.HostName
	if hostName == "" {
		hostName = "Oyuncu 1"
	}

	slotCount := len(models.ModeParticipants(models.GameModeSolo4))
	players := make([]models.PlayerSlot, slotCount)
	for i := range players {
		players[i] = models.PlayerSlot{}
	}
	lastSeen := now
	players[0] = models.PlayerSlot{
		Name:     hostName,
		Online:   true,
		IsHost:   true,
		LastSeen: &lastSeen,
	}

	table := &models.Table{
		ID:           s.uuids.NewUUID(),
		Name:         input.Name,
		Password:     input.Password,
		HostSlot:     0,
		Players:      players,
		MatchState:   models.NewMatchState(),
		CreatedAt:    now,
		LastActivity: now,
	}

	lock := s.lockFor(table.ID)
	lock.Lock()
	s.push(ctx, table)
	lock.Unlock()

	return &CreateTableOutput{
		TableID: table.ID,
		Table:   table.Clone(),
	}, nil
}

// JoinTable seats a player. Fails with ErrTableNotFound, ErrWrongPassword,
// ErrInvalidSlot, or ErrSlotOccupied; none of these are retried here.
func (s *service) JoinTable(ctx context.Context, input *JoinTableInput) (*JoinTableOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	table, err := s.mutate(ctx, input.TableID, func(table *models.Table) error {
		if table.Password != input.Password {
			return ErrWrongPassword
		}
		if input.SlotIndex < 0 || input.SlotIndex >= len(table.Players) {
			return fmt.Errorf("%w: %d", ErrInvalidSlot, input.SlotIndex)
		}
		if table.Players[input.SlotIndex].Online {
			return ErrSlotOccupied
		}

		now := s.clock.Now()
		slot := &table.Players[input.SlotIndex]
		slot.Online = true
		slot.LastSeen = &now
		if input.PlayerName != "" {
			slot.Name = input.PlayerName
		}
		table.LastActivity = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A reconnect during the grace window cancels the pending deletion
	s.cancelCleanup(input.TableID)

	return &JoinTableOutput{
		Table:        table,
		GameCanStart: table.GameCanStart(),
	}, nil
}

// LeaveTable marks a slot offline. Taking the table to all-offline starts
// the garbage-collection clock.
func (s *service) LeaveTable(ctx context.Context, input *LeaveTableInput) (*LeaveTableOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	table, err := s.mutate(ctx, input.TableID, func(table *models.Table) error {
		if input.SlotIndex < 0 || input.SlotIndex >= len(table.Players) {
			return fmt.Errorf("%w: %d", ErrInvalidSlot, input.SlotIndex)
		}

		table.Players[input.SlotIndex].Online = false
		table.LastActivity = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	cleanupScheduled := false
	if table.AllOffline() {
		s.scheduleCleanup(input.TableID)
		cleanupScheduled = true
	}

	return &LeaveTableOutput{
		Table:            table,
		CleanupScheduled: cleanupScheduled,
	}, nil
}

// StartTableGame configures the embedded match from the roster and starts
// it. Valid only when every slot is online.
func (s *service) StartTableGame(ctx context.Context, input *StartTableGameInput) (*StartTableGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	table, err := s.mutate(ctx, input.TableID, func(table *models.Table) error {
		if !table.GameCanStart() {
			return ErrGameCannotStart
		}

		machine, err := match.New(&match.Config{
			Clock:         s.clock,
			UUIDGenerator: s.uuids,
		})
		if err != nil {
			return err
		}

		settings := s.settingsForTable(table, input)
		if err := machine.Configure(settings); err != nil {
			return err
		}
		if err := machine.Start(); err != nil {
			return err
		}

		table.MatchState = machine.State()
		table.LastActivity = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &StartTableGameOutput{Table: table}, nil
}

func (s *service) settingsForTable(table *models.Table, input *StartTableGameInput) models.MatchSettings {
	settings := models.DefaultSettings()
	if input.Mode != "" {
		settings.Mode = input.Mode
	}
	if input.Target > 0 {
		settings.Target = input.Target
	}

	participants := models.ModeParticipants(settings.Mode)
	if settings.Mode == models.GameModeTeams2v2 {
		settings.Names = []string{"Takım A", "Takım B"}
	} else {
		names := make([]string, len(participants))
		for i := range names {
			if i < len(table.Players) && table.Players[i].Name != "" {
				names[i] = table.Players[i].Name
			} else {
				names[i] = fmt.Sprintf("Oyuncu %d", i+1)
			}
		}
		settings.Names = names
	}
	return settings
}

// UpdateMatchState replaces the embedded match wholesale. This is the
// last-writer-wins replication point: no merge, no version check, the whole
// document is overwritten.
func (s *service) UpdateMatchState(ctx context.Context, input *UpdateMatchStateInput) (*UpdateMatchStateOutput, error) {
	if input == nil || input.MatchState == nil {
		return nil, errors.New("input and match state cannot be nil")
	}

	table, err := s.mutate(ctx, input.TableID, func(table *models.Table) error {
		table.MatchState = input.MatchState.Clone()
		table.LastActivity = s.clock.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpdateMatchStateOutput{Table: table}, nil
}

// GetTable retrieves the current table document
func (s *service) GetTable(ctx context.Context, input *GetTableInput) (*GetTableOutput, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}

	table, err := s.replicator.Pull(ctx, input.TableID)
	if err != nil {
		if errors.Is(err, tableStore.ErrTableNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	return &GetTableOutput{
		Table:        table,
		GameCanStart: table.GameCanStart(),
	}, nil
}

// ListTables retrieves all tables
func (s *service) ListTables(ctx context.Context, input *ListTablesInput) (*ListTablesOutput, error) {
	tables, err := s.replicator.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTablesOutput{Tables: tables}, nil
}

// WatchTable subscribes to table updates, filtering out echoes of this
// service's own writes by their UpdatedAt stamp.
func (s *service) WatchTable(ctx context.Context, input *WatchTableInput) (*WatchTableOutput, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}
	if input.OnChange == nil {
		return nil, errors.New("change callback cannot be nil")
	}

	sub, err := s.replicator.Subscribe(ctx, input.TableID, func(table *models.Table) {
		s.mu.Lock()
		lastWrite := s.lastWrites[table.ID]
		s.mu.Unlock()

		if table.UpdatedAt.Equal(lastWrite) {
			// Our own write coming back around
			return
		}
		input.OnChange(table)
	})
	if err != nil {
		return nil, err
	}

	return &WatchTableOutput{Subscription: sub}, nil
}

// SweepTimeouts forces offline every online slot whose presence is stale.
// Runs table by table under the per-table lock, so it cannot race a join on
// the same table.
func (s *service) SweepTimeouts(ctx context.Context, input *SweepTimeoutsInput) (*SweepTimeoutsOutput, error) {
	tables, err := s.replicator.List(ctx)
	if err != nil {
		return nil, err
	}

	output := &SweepTimeoutsOutput{}
	now := s.clock.Now()

	for _, stale := range tables {
		timedOut := 0
		updated, err := s.mutate(ctx, stale.ID, func(table *models.Table) error {
			timedOut = 0
			for i := range table.Players {
				slot := &table.Players[i]
				if !slot.Online {
					continue
				}
				if slot.LastSeen == nil || now.Sub(*slot.LastSeen) > s.presenceTimeout {
					slot.Online = false
					timedOut++
				}
			}
			if timedOut == 0 {
				return errNoChange
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrTableNotFound) {
				continue
			}
			return nil, err
		}

		if timedOut == 0 {
			continue
		}
		output.SlotsTimedOut += timedOut

		if updated.AllOffline() {
			output.TablesAbandoned++
			s.scheduleCleanup(updated.ID)
			logging.Info("table abandoned, cleanup scheduled",
				zap.String("table_id", updated.ID))
		}
	}

	return output, nil
}

// RunSweeper ticks SweepTimeouts until the context is cancelled
func (s *service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = models.SweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepTimeouts(ctx, &SweepTimeoutsInput{}); err != nil {
				logging.Error("presence sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *service) scheduleCleanup(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.gcTimers[tableID]; ok {
		timer.Stop()
	}
	s.gcTimers[tableID] = time.AfterFunc(s.cleanupGrace, func() {
		s.cleanupIfAbandoned(context.Background(), tableID)
	})
}

func (s *service) cancelCleanup(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.gcTimers[tableID]; ok {
		timer.Stop()
		delete(s.gcTimers, tableID)
	}
}

// cleanupIfAbandoned deletes the table only if, by the time the grace
// period has run out, every slot is still offline and nothing touched the
// table since. A reconnect in the window keeps the table alive.
func (s *service) cleanupIfAbandoned(ctx context.Context, tableID string) {
	lock := s.lockFor(tableID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.gcTimers, tableID)
	s.mu.Unlock()

	table, err := s.replicator.Pull(ctx, tableID)
	if err != nil {
		return
	}

	if !table.AllOffline() {
		return
	}
	if s.clock.Now().Sub(table.LastActivity) < s.cleanupGrace {
		return
	}

	if err := s.replicator.Delete(ctx, tableID); err != nil {
		logging.Error("failed to delete abandoned table",
			zap.String("table_id", tableID),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	delete(s.tableLocks, tableID)
	delete(s.lastWrites, tableID)
	s.mu.Unlock()

	logging.Info("deleted abandoned table", zap.String("table_id", tableID))
}
