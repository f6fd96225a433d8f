package table

//go:generate mockgen -package=mocks -destination=mocks/mock_store.go github.com/cemkoker/adisyon/internal/repositories/table Store

import (
	"context"

	"github.com/cemkoker/adisyon/internal/models"
)

// Store defines the persistence contract shared by both table backends: the
// remote document store (redis) and the single-process local store. Writes
// are whole-document; the last writer wins.
type Store interface {
	// PersistTable writes the full table document
	PersistTable(ctx context.Context, input *PersistTableInput) error

	// FetchTable retrieves a table by ID
	FetchTable(ctx context.Context, input *FetchTableInput) (*models.Table, error)

	// DeleteTable removes a table
	DeleteTable(ctx context.Context, input *DeleteTableInput) error

	// ListTables retrieves all known tables
	ListTables(ctx context.Context, input *ListTablesInput) (*ListTablesOutput, error)

	// Subscribe registers a callback fired on every write to the table,
	// including this client's own writes
	Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error)
}

// Subscription is a live change feed for one table
type Subscription interface {
	// Close stops the feed
	Close() error
}
