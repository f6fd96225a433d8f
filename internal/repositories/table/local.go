package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cemkoker/adisyon/internal/models"
)

// LocalConfig holds configuration for the local table store
type LocalConfig struct {
	// FilePath is where the table collection blob is persisted. Empty keeps
	// everything in memory only.
	FilePath string
}

// localStore implements the Store interface inside a single process. The
// whole table collection is one JSON blob, mirroring the original app's
// local storage document. Subscribe is an in-process broadcast: only
// listeners in the same process see changes.
type localStore struct {
	mu        sync.Mutex
	filePath  string
	tables    map[string]*models.Table
	listeners map[string]map[int]func(table *models.Table)
	nextID    int
}

// NewLocal creates a local table store, loading any previously persisted
// collection from disk.
func NewLocal(cfg *LocalConfig) (*localStore, error) {
	s := &localStore{
		tables:    make(map[string]*models.Table),
		listeners: make(map[string]map[int]func(table *models.Table)),
	}
	if cfg != nil {
		s.filePath = cfg.FilePath
	}

	if s.filePath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *localStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read table collection: %w", err)
	}

	var tables map[string]*models.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("failed to unmarshal table collection: %w", err)
	}
	if tables != nil {
		s.tables = tables
	}
	return nil
}

// flush must be called with the lock held
func (s *localStore) flush() error {
	if s.filePath == "" {
		return nil
	}

	data, err := json.Marshal(s.tables)
	if err != nil {
		return fmt.Errorf("failed to marshal table collection: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write table collection: %w", err)
	}
	return nil
}

// PersistTable writes the table into the collection and notifies listeners
// synchronously.
func (s *localStore) PersistTable(ctx context.Context, input *PersistTableInput) error {
	if input == nil || input.Table == nil {
		return errors.New("input and table cannot be nil")
	}

	s.mu.Lock()
	clone := input.Table.Clone()
	s.tables[clone.ID] = clone
	err := s.flush()
	callbacks := make([]func(table *models.Table), 0, len(s.listeners[clone.ID]))
	for _, cb := range s.listeners[clone.ID] {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	for _, cb := range callbacks {
		cb(clone.Clone())
	}
	return nil
}

// FetchTable retrieves a table by ID
func (s *localStore) FetchTable(ctx context.Context, input *FetchTableInput) (*models.Table, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[input.TableID]
	if !ok {
		return nil, ErrTableNotFound
	}
	return table.Clone(), nil
}

// DeleteTable removes a table from the collection
func (s *localStore) DeleteTable(ctx context.Context, input *DeleteTableInput) error {
	if input == nil || input.TableID == "" {
		return errors.New("input and table ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables, input.TableID)
	return s.flush()
}

// ListTables retrieves all known tables
func (s *localStore) ListTables(ctx context.Context, input *ListTablesInput) (*ListTablesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make([]*models.Table, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table.Clone())
	}
	return &ListTablesOutput{Tables: tables}, nil
}

type localSubscription struct {
	store   *localStore
	tableID string
	id      int
}

func (s *localSubscription) Close() error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if listeners, ok := s.store.listeners[s.tableID]; ok {
		delete(listeners, s.id)
		if len(listeners) == 0 {
			delete(s.store.listeners, s.tableID)
		}
	}
	return nil
}

// Subscribe registers an in-process listener for the table
func (s *localStore) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}
	if input.OnChange == nil {
		return nil, errors.New("change callback cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners[input.TableID] == nil {
		s.listeners[input.TableID] = make(map[int]func(table *models.Table))
	}
	s.nextID++
	s.listeners[input.TableID][s.nextID] = input.OnChange

	return &localSubscription{store: s, tableID: input.TableID, id: s.nextID}, nil
}
