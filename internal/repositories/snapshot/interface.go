package snapshot

//go:generate mockgen -package=mocks -destination=mocks/mock_store.go github.com/cemkoker/adisyon/internal/repositories/snapshot Store

import (
	"context"

	"github.com/cemkoker/adisyon/internal/models"
)

// Store persists the device's match snapshot document: the match state plus
// theme and the current-table attachment fields.
type Store interface {
	// SaveSnapshot writes the full snapshot document
	SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error

	// GetSnapshot retrieves the snapshot, migrated to the current schema
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.MatchSnapshot, error)

	// ClearSnapshot removes the snapshot
	ClearSnapshot(ctx context.Context, input *ClearSnapshotInput) error
}

type SaveSnapshotInput struct {
	Snapshot *models.MatchSnapshot
}

type GetSnapshotInput struct {
}

type ClearSnapshotInput struct {
}
