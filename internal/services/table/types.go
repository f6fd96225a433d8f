package table

import (
	"time"

	"github.com/cemkoker/adisyon/internal/common/clock"
	"github.com/cemkoker/adisyon/internal/common/uuid"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/replication"
	tableStore "github.com/cemkoker/adisyon/internal/repositories/table"
)

// Config holds configuration for the table service
type Config struct {
	// Replicator moves table documents to and from the shared store
	Replicator *replication.Adapter

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// PresenceTimeout overrides how long a silent slot stays online.
	// Defaults to models.PresenceTimeout.
	PresenceTimeout time.Duration

	// CleanupGracePeriod overrides how long an all-offline table survives.
	// Defaults to models.CleanupGracePeriod.
	CleanupGracePeriod time.Duration
}

// CreateTableInput contains parameters for creating a table
type CreateTableInput struct {
	// Name is the table's display name
	Name string

	// Password gates joining; stored and compared in plaintext
	Password string

	// HostName is the display name for the creator in slot 0
	HostName string
}

// CreateTableOutput contains the result of creating a table
type CreateTableOutput struct {
	// TableID is the unique identifier for the created table
	TableID string

	// Table is the created table document
	Table *models.Table
}

// JoinTableInput contains parameters for joining a table
type JoinTableInput struct {
	TableID string

	// SlotIndex is the seat to take
	SlotIndex int

	// Password must match the table's password
	Password string

	// PlayerName is the display name for the slot
	PlayerName string
}

// JoinTableOutput contains the result of joining a table
type JoinTableOutput struct {
	Table *models.Table

	// GameCanStart is true when every slot is online
	GameCanStart bool
}

// LeaveTableInput contains parameters for leaving a table
type LeaveTableInput struct {
	TableID   string
	SlotIndex int
}

// LeaveTableOutput contains the result of leaving a table
type LeaveTableOutput struct {
	Table *models.Table

	// CleanupScheduled is true when this leave took the table all-offline
	// and started the garbage-collection grace period
	CleanupScheduled bool
}

// StartTableGameInput contains parameters for starting a table's match
type StartTableGameInput struct {
	TableID string

	// Target is the number of hands to play; 0 keeps the default
	Target int

	// Mode selects the participant layout; empty keeps the default
	Mode models.GameMode
}

// StartTableGameOutput contains the result of starting a table's match
type StartTableGameOutput struct {
	Table *models.Table
}

// UpdateMatchStateInput contains parameters for replacing a table's match
// state
type UpdateMatchStateInput struct {
	TableID    string
	MatchState *models.MatchState
}

// UpdateMatchStateOutput contains the result of replacing match state
type UpdateMatchStateOutput struct {
	Table *models.Table
}

// GetTableInput contains parameters for retrieving a table
type GetTableInput struct {
	TableID string
}

// GetTableOutput contains the retrieved table
type GetTableOutput struct {
	Table *models.Table

	// GameCanStart is true when every slot is online
	GameCanStart bool
}

// ListTablesInput contains parameters for listing tables
type ListTablesInput struct {
}

// ListTablesOutput contains all known tables
type ListTablesOutput struct {
	Tables []*models.Table
}

// WatchTableInput contains parameters for watching a table
type WatchTableInput struct {
	TableID string

	// OnChange receives every update to the table, this client's own
	// echoed writes excluded (debounced by UpdatedAt)
	OnChange func(table *models.Table)
}

// WatchTableOutput contains the live subscription
type WatchTableOutput struct {
	Subscription tableStore.Subscription
}

// SweepTimeoutsInput contains parameters for a presence sweep
type SweepTimeoutsInput struct {
}

// SweepTimeoutsOutput contains the result of a presence sweep
type SweepTimeoutsOutput struct {
	// SlotsTimedOut is how many slots the sweep forced offline
	SlotsTimedOut int

	// TablesAbandoned is how many tables went all-offline during the sweep
	TablesAbandoned int
}
