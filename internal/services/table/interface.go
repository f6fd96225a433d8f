package table

import "context"

// Service defines the interface for shared-table operations
type Service interface {
	// CreateTable allocates a new table with the creator seated in slot 0
	// as host
	CreateTable(ctx context.Context, input *CreateTableInput) (*CreateTableOutput, error)

	// JoinTable seats a player in a slot after checking the password
	JoinTable(ctx context.Context, input *JoinTableInput) (*JoinTableOutput, error)

	// LeaveTable marks a slot offline; an all-offline table is scheduled
	// for garbage collection after the grace period
	LeaveTable(ctx context.Context, input *LeaveTableInput) (*LeaveTableOutput, error)

	// StartTableGame configures and starts the embedded match once every
	// slot is online
	StartTableGame(ctx context.Context, input *StartTableGameInput) (*StartTableGameOutput, error)

	// UpdateMatchState replaces the embedded match state wholesale and
	// replicates it to other holders of the table
	UpdateMatchState(ctx context.Context, input *UpdateMatchStateInput) (*UpdateMatchStateOutput, error)

	// GetTable retrieves the current table document
	GetTable(ctx context.Context, input *GetTableInput) (*GetTableOutput, error)

	// ListTables retrieves all tables
	ListTables(ctx context.Context, input *ListTablesInput) (*ListTablesOutput, error)

	// WatchTable streams table updates to the callback until the returned
	// subscription is closed
	WatchTable(ctx context.Context, input *WatchTableInput) (*WatchTableOutput, error)

	// SweepTimeouts forces offline any slot silent for longer than the
	// presence timeout; intended to run on a periodic tick
	SweepTimeouts(ctx context.Context, input *SweepTimeoutsInput) (*SweepTimeoutsOutput, error)
}
