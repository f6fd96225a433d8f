// Package score exposes this device's match to the rendering layer:
// configuration, score entry, penalties, undo, theme, and snapshot
// persistence, with the table attachment fields carried alongside.
package score

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/cemkoker/adisyon/internal/match"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/repositories/snapshot"
	"github.com/cemkoker/adisyon/internal/scoring"
	"github.com/cemkoker/adisyon/pkg/logging"
)

// Define errors
var (
	ErrNilConfig        = errors.New("config cannot be nil")
	ErrNilSnapshotStore = errors.New("snapshot store cannot be nil")
	ErrNilClock         = errors.New("clock cannot be nil")
	ErrNilUUIDGenerator = errors.New("UUID generator cannot be nil")
)

// service implements the Service interface
type service struct {
	// All mutations run on one goroutine at a time; the mutex stands in
	// for the original's single UI thread.
	mu sync.Mutex

	machine   *match.Machine
	snapshots snapshot.Store

	theme         string
	currentTable  string
	currentPlayer int
	isTableHost   bool
}

// New creates a score service, restoring any persisted snapshot
func New(ctx context.Context, cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.SnapshotStore == nil {
		return nil, ErrNilSnapshotStore
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	machine, err := match.New(&match.Config{
		Clock:         cfg.Clock,
		UUIDGenerator: cfg.UUIDGenerator,
	})
	if err != nil {
		return nil, err
	}

	s := &service{
		machine:       machine,
		snapshots:     cfg.SnapshotStore,
		theme:         "light",
		currentPlayer: -1,
	}

	snap, err := cfg.SnapshotStore.GetSnapshot(ctx, &snapshot.GetSnapshotInput{})
	if err != nil {
		if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
			return nil, err
		}
		return s, nil
	}

	s.theme = snap.Theme
	s.currentTable = snap.CurrentTable
	s.currentPlayer = snap.CurrentPlayer
	s.isTableHost = snap.IsTableHost
	machine.Load(&models.MatchState{
		Settings:       snap.Settings,
		Rows:           snap.Rows,
		Penalties:      snap.Penalties,
		StartedAt:      snap.StartedAt,
		GameStarted:    snap.GameStarted,
		MilestoneShown: snap.MilestoneShown,
	})
	return s, nil
}

// persist writes the snapshot. Failures are logged, not surfaced: losing a
// save must never block score entry.
func (s *service) persist(ctx context.Context) {
	state := s.machine.State()
	err := s.snapshots.SaveSnapshot(ctx, &snapshot.SaveSnapshotInput{
		Snapshot: &models.MatchSnapshot{
			Settings:       state.Settings,
			Rows:           state.Rows,
			Penalties:      state.Penalties,
			Theme:          s.theme,
			StartedAt:      state.StartedAt,
			GameStarted:    state.GameStarted,
			MilestoneShown: state.MilestoneShown,
			CurrentTable:   s.currentTable,
			CurrentPlayer:  s.currentPlayer,
			IsTableHost:    s.isTableHost,
		},
	})
	if err != nil {
		logging.Warn("failed to save match snapshot", zap.Error(err))
	}
}

// Configure sets the match settings
func (s *service) Configure(ctx context.Context, input *ConfigureInput) (*ConfigureOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Configure(input.Settings); err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &ConfigureOutput{Settings: s.machine.State().Settings}, nil
}

// StartMatch begins play
func (s *service) StartMatch(ctx context.Context, input *StartMatchInput) (*StartMatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Start(); err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &StartMatchOutput{State: s.machine.Snapshot()}, nil
}

// SetValue stores one score cell
func (s *service) SetValue(ctx context.Context, input *SetValueInput) (*SetValueOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.machine.SetValue(input.HandIndex, input.ParticipantIndex, input.RawValue)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &SetValueOutput{
		Value:            result.Value,
		QuickPenaltyCell: result.QuickPenaltyCell,
		RowCompleted:     result.RowCompleted,
		MilestoneReached: result.MilestoneReached,
		MatchCompleted:   result.MatchCompleted,
		Standings:        scoring.Standings(s.machine.State()),
	}, nil
}

// AddHand appends the next empty row
func (s *service) AddHand(ctx context.Context, input *AddHandInput) (*AddHandOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.AddHand(); err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &AddHandOutput{State: s.machine.Snapshot()}, nil
}

// Undo reopens the last completed hand
func (s *service) Undo(ctx context.Context, input *UndoInput) (*UndoOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	undone := s.machine.Undo()
	if undone {
		s.persist(ctx)
	}

	return &UndoOutput{
		Undone: undone,
		State:  s.machine.Snapshot(),
	}, nil
}

// ApplyPenalty records a manual penalty
func (s *service) ApplyPenalty(ctx context.Context, input *ApplyPenaltyInput) (*ApplyPenaltyOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	penalty, err := s.machine.ApplyPenalty(input.Participant, input.Value, input.Note)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &ApplyPenaltyOutput{Penalty: penalty}, nil
}

// ApplyQuickPenalty records the one-click -101 penalty
func (s *service) ApplyQuickPenalty(ctx context.Context, input *ApplyQuickPenaltyInput) (*ApplyQuickPenaltyOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	penalty, err := s.machine.ApplyQuickPenalty(input.Participant)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)

	return &ApplyQuickPenaltyOutput{Penalty: penalty}, nil
}

// RemovePenalty deletes a penalty; removing an absent id is a no-op
func (s *service) RemovePenalty(ctx context.Context, input *RemovePenaltyInput) (*RemovePenaltyOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.RemovePenalty(input.PenaltyID)
	s.persist(ctx)

	return &RemovePenaltyOutput{}, nil
}

// ResetMatch discards all match data. The theme is the one preference that
// survives.
func (s *service) ResetMatch(ctx context.Context, input *ResetMatchInput) (*ResetMatchOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Reset()
	s.currentTable = ""
	s.currentPlayer = -1
	s.isTableHost = false
	s.persist(ctx)

	return &ResetMatchOutput{
		State: s.machine.Snapshot(),
		Theme: s.theme,
	}, nil
}

// SetTheme stores the display preference
func (s *service) SetTheme(ctx context.Context, input *SetThemeInput) (*SetThemeOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	theme := input.Theme
	if theme != "dark" {
		theme = "light"
	}
	s.theme = theme
	s.persist(ctx)

	return &SetThemeOutput{Theme: theme}, nil
}

// GetState returns the current match state and attachment fields
func (s *service) GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &GetStateOutput{
		State:         s.machine.Snapshot(),
		Phase:         s.machine.Phase(),
		Theme:         s.theme,
		CurrentTable:  s.currentTable,
		CurrentPlayer: s.currentPlayer,
		IsTableHost:   s.isTableHost,
	}, nil
}

// GetStandings returns totals, milestone, and winner information
func (s *service) GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.machine.State()
	return &GetStandingsOutput{
		Standings:      scoring.Standings(state),
		CompletedHands: scoring.CompletedHandCount(state),
		MilestoneHand:  scoring.MilestoneHand(state),
		AtMilestone:    scoring.IsAtMilestone(state),
		Complete:       scoring.IsComplete(state),
		Winner:         scoring.Winner(state),
	}, nil
}

// AttachTable records that this device follows a shared table
func (s *service) AttachTable(ctx context.Context, input *AttachTableInput) (*AttachTableOutput, error) {
	if input == nil || input.TableID == "" {
		return nil, errors.New("input and table ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTable = input.TableID
	s.currentPlayer = input.SlotIndex
	s.isTableHost = input.IsHost
	s.persist(ctx)

	return &AttachTableOutput{}, nil
}

// DetachTable drops the shared-table attachment
func (s *service) DetachTable(ctx context.Context, input *DetachTableInput) (*DetachTableOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTable = ""
	s.currentPlayer = -1
	s.isTableHost = false
	s.persist(ctx)

	return &DetachTableOutput{}, nil
}

// ApplyRemoteState replaces the local match with the copy another writer
// pushed to the shared table. Whole-state replacement, matching the
// last-writer-wins replication model.
func (s *service) ApplyRemoteState(ctx context.Context, input *ApplyRemoteStateInput) (*ApplyRemoteStateOutput, error) {
	if input == nil || input.State == nil {
		return nil, errors.New("input and state cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Load(input.State.Clone())
	s.persist(ctx)

	return &ApplyRemoteStateOutput{
		Standings: scoring.Standings(s.machine.State()),
	}, nil
}
