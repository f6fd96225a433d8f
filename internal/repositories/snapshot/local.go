package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cemkoker/adisyon/internal/models"
)

// LocalConfig holds configuration for the file-backed snapshot store
type LocalConfig struct {
	// FilePath is where the snapshot document lives. Empty keeps the
	// snapshot in memory only.
	FilePath string
}

// localStore implements the Store interface against a single JSON file,
// standing in for the original app's local storage entry.
type localStore struct {
	mu       sync.Mutex
	filePath string
	data     []byte
}

// NewLocal creates a file-backed snapshot store
func NewLocal(cfg *LocalConfig) (*localStore, error) {
	s := &localStore{}
	if cfg != nil {
		s.filePath = cfg.FilePath
	}

	if s.filePath != "" {
		data, err := os.ReadFile(s.filePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		s.data = data
	}
	return s, nil
}

// SaveSnapshot writes the full snapshot document
func (s *localStore) SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error {
	if input == nil || input.Snapshot == nil {
		return errors.New("input and snapshot cannot be nil")
	}

	data, err := marshalSnapshot(input.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = data
	if s.filePath != "" {
		if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}
	return nil
}

// GetSnapshot retrieves and migrates the snapshot
func (s *localStore) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.MatchSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return unmarshalSnapshot(s.data)
}

// ClearSnapshot removes the snapshot
func (s *localStore) ClearSnapshot(ctx context.Context, input *ClearSnapshotInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil
	if s.filePath != "" {
		if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove snapshot: %w", err)
		}
	}
	return nil
}
