package score

import (
	"github.com/cemkoker/adisyon/internal/common/clock"
	"github.com/cemkoker/adisyon/internal/common/uuid"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/repositories/snapshot"
	"github.com/cemkoker/adisyon/internal/scoring"
)

// Config holds configuration for the score service
type Config struct {
	// SnapshotStore persists the match document between sessions
	SnapshotStore snapshot.Store

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// ConfigureInput contains the settings to apply
type ConfigureInput struct {
	Settings models.MatchSettings
}

// ConfigureOutput contains the result of configuring
type ConfigureOutput struct {
	Settings models.MatchSettings
}

// StartMatchInput contains parameters for starting the match
type StartMatchInput struct {
}

// StartMatchOutput contains the started match state
type StartMatchOutput struct {
	State *models.MatchState
}

// SetValueInput addresses one score cell
type SetValueInput struct {
	// HandIndex is the 0-based row index
	HandIndex int

	// ParticipantIndex is the 0-based slot in mode order
	ParticipantIndex int

	// RawValue is the user's input, sanitized before storage
	RawValue string
}

// SetValueOutput reports what the entry changed
type SetValueOutput struct {
	// Value is the sanitized stored value, nil for an empty cell
	Value *int

	// QuickPenaltyCell is true when the cell now holds -101
	QuickPenaltyCell bool

	RowCompleted     bool
	MilestoneReached bool
	MatchCompleted   bool

	// Standings is the refreshed score breakdown
	Standings []scoring.Standing
}

// AddHandInput contains parameters for appending a hand
type AddHandInput struct {
}

// AddHandOutput contains the refreshed state
type AddHandOutput struct {
	State *models.MatchState
}

// UndoInput contains parameters for undo
type UndoInput struct {
}

// UndoOutput contains the result of undo
type UndoOutput struct {
	// Undone is false when no completed hand existed
	Undone bool

	State *models.MatchState
}

// ApplyPenaltyInput contains parameters for a manual penalty
type ApplyPenaltyInput struct {
	Participant string
	Value       int
	Note        string
}

// ApplyPenaltyOutput contains the recorded penalty
type ApplyPenaltyOutput struct {
	Penalty *models.Penalty
}

// ApplyQuickPenaltyInput contains parameters for the -101 shortcut
type ApplyQuickPenaltyInput struct {
	Participant string
}

// ApplyQuickPenaltyOutput contains the recorded penalty
type ApplyQuickPenaltyOutput struct {
	Penalty *models.Penalty
}

// RemovePenaltyInput identifies the penalty to delete
type RemovePenaltyInput struct {
	PenaltyID string
}

// RemovePenaltyOutput contains the result of removal
type RemovePenaltyOutput struct {
}

// ResetMatchInput contains parameters for reset
type ResetMatchInput struct {
}

// ResetMatchOutput contains the fresh state
type ResetMatchOutput struct {
	State *models.MatchState

	// Theme survives the reset
	Theme string
}

// SetThemeInput contains the theme to store
type SetThemeInput struct {
	// Theme is "light" or "dark"
	Theme string
}

// SetThemeOutput contains the stored theme
type SetThemeOutput struct {
	Theme string
}

// GetStateInput contains parameters for reading state
type GetStateInput struct {
}

// GetStateOutput contains the current match state
type GetStateOutput struct {
	State *models.MatchState
	Phase models.MatchPhase
	Theme string

	// CurrentTable is the attached table id, empty when detached
	CurrentTable string

	// CurrentPlayer is this device's slot on the table, -1 when detached
	CurrentPlayer int

	// IsTableHost indicates this device created the attached table
	IsTableHost bool
}

// GetStandingsInput contains parameters for reading standings
type GetStandingsInput struct {
}

// GetStandingsOutput contains totals and progress
type GetStandingsOutput struct {
	Standings []scoring.Standing

	CompletedHands int
	MilestoneHand  int
	AtMilestone    bool
	Complete       bool

	// Winner is nil until the match completes
	Winner *scoring.Standing
}

// AttachTableInput records a shared-table attachment
type AttachTableInput struct {
	TableID   string
	SlotIndex int
	IsHost    bool
}

// AttachTableOutput contains the result of attaching
type AttachTableOutput struct {
}

// DetachTableInput contains parameters for detaching
type DetachTableInput struct {
}

// DetachTableOutput contains the result of detaching
type DetachTableOutput struct {
}

// ApplyRemoteStateInput carries a match state received from replication
type ApplyRemoteStateInput struct {
	State *models.MatchState
}

// ApplyRemoteStateOutput contains the refreshed standings
type ApplyRemoteStateOutput struct {
	Standings []scoring.Standing
}
