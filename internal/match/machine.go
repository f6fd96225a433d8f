// Package match owns the authoritative in-memory state of a single match
// and enforces its lifecycle: Unconfigured → Configured → InProgress →
// Complete, with Reset back to Unconfigured from anywhere.
package match

import (
	"fmt"
	"strings"

	"github.com/cemkoker/adisyon/internal/common/clock"
	"github.com/cemkoker/adisyon/internal/common/uuid"
	"github.com/cemkoker/adisyon/internal/models"
	"github.com/cemkoker/adisyon/internal/scoring"
)

// Config holds dependencies for a match machine
type Config struct {
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// Machine drives one match. It is not safe for concurrent use; owners
// serialize access (the table service holds a per-table lock, the match
// service a single mutex).
type Machine struct {
	state      *models.MatchState
	configured bool
	deps       machineDeps
}

type machineDeps struct {
	clock clock.Clock
	uuids uuid.UUID
}

// New creates a match machine with a fresh unconfigured state
func New(cfg *Config) (*Machine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &Machine{
		state: models.NewMatchState(),
		deps: machineDeps{
			clock: cfg.Clock,
			uuids: cfg.UUIDGenerator,
		},
	}, nil
}

// Phase reports the machine's lifecycle phase
func (m *Machine) Phase() models.MatchPhase {
	switch {
	case m.state.GameStarted && scoring.IsComplete(m.state):
		return models.MatchPhaseComplete
	case m.state.GameStarted:
		return models.MatchPhaseInProgress
	case m.configured:
		return models.MatchPhaseConfigured
	default:
		return models.MatchPhaseUnconfigured
	}
}

// State returns the live match state. Callers must not retain it across
// mutations; use Snapshot for a detached copy.
func (m *Machine) State() *models.MatchState {
	return m.state
}

// Snapshot returns a deep copy of the current state
func (m *Machine) Snapshot() *models.MatchState {
	return m.state.Clone()
}

// Load replaces the machine's state wholesale, e.g. from a persisted
// snapshot or a remote table update. The phase is re-derived from the
// incoming state.
func (m *Machine) Load(state *models.MatchState) {
	if state == nil {
		state = models.NewMatchState()
	}
	m.state = state
	m.configured = validateSettings(state.Settings) == nil
}

func validateSettings(settings models.MatchSettings) error {
	if settings.Target <= 0 {
		return fmt.Errorf("%w: target must be positive, got %d", ErrValidation, settings.Target)
	}

	participants := models.ModeParticipants(settings.Mode)
	if settings.Mode != models.GameModeSolo4 && settings.Mode != models.GameModeTeams2v2 {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, settings.Mode)
	}

	if len(settings.Names) != len(participants) {
		return fmt.Errorf("%w: expected %d names, got %d", ErrValidation, len(participants), len(settings.Names))
	}
	for i, name := range settings.Names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: name for %s is empty", ErrValidation, participants[i])
		}
	}
	return nil
}

// Configure sets the match settings. Only valid before the match starts.
func (m *Machine) Configure(settings models.MatchSettings) error {
	if m.state.GameStarted {
		return fmt.Errorf("%w: cannot configure a started match", ErrInvalidTransition)
	}

	if err := validateSettings(settings); err != nil {
		return err
	}

	m.state.Settings = settings
	m.configured = true
	return nil
}

// Start begins play: stamps StartedAt, appends the first empty row, and
// moves to InProgress.
func (m *Machine) Start() error {
	if m.state.GameStarted {
		return fmt.Errorf("%w: match already started", ErrInvalidTransition)
	}
	if !m.configured {
		return fmt.Errorf("%w: match is not configured", ErrInvalidTransition)
	}
	if err := validateSettings(m.state.Settings); err != nil {
		return fmt.Errorf("%w: settings incomplete", ErrInvalidTransition)
	}

	now := m.deps.clock.Now()
	m.state.StartedAt = &now
	m.state.GameStarted = true
	m.state.Rows = []models.HandRow{newRow(1, len(m.state.Participants()))}
	return nil
}

func newRow(hand, participantCount int) models.HandRow {
	return models.HandRow{
		Hand:   hand,
		Values: make([]*int, participantCount),
	}
}

func (m *Machine) maxHand() int {
	maxHand := 0
	for _, row := range m.state.Rows {
		if row.Hand > maxHand {
			maxHand = row.Hand
		}
	}
	return maxHand
}

// SetValueResult describes what a score entry changed
type SetValueResult struct {
	// Value is the sanitized value stored in the cell, nil for empty
	Value *int

	// QuickPenaltyCell is true when the stored value is the -101 shortcut
	QuickPenaltyCell bool

	// RowCompleted is true when this entry filled the row's last open cell
	RowCompleted bool

	// MilestoneReached fires exactly once, when the completed-row count
	// first crosses to target-1
	MilestoneReached bool

	// MatchCompleted is true when this entry finished the match
	MatchCompleted bool
}

// SetValue sanitizes raw input and stores it in the given cell. Out-of-range
// or non-numeric input becomes an empty cell, never an error. Completing the
// last row auto-appends the next hand unless the match is finished.
func (m *Machine) SetValue(handIndex, participantIndex int, raw string) (*SetValueResult, error) {
	if m.Phase() != models.MatchPhaseInProgress {
		return nil, fmt.Errorf("%w: match is not in progress", ErrInvalidTransition)
	}

	if handIndex < 0 || handIndex >= len(m.state.Rows) {
		return nil, fmt.Errorf("%w: row %d does not exist", ErrValidation, handIndex)
	}

	participantCount := len(m.state.Participants())
	if participantIndex < 0 || participantIndex >= participantCount {
		return nil, fmt.Errorf("%w: participant index %d out of range", ErrValidation, participantIndex)
	}

	value := scoring.SanitizeHandValue(raw)
	m.state.Rows[handIndex].Values[participantIndex] = value

	result := &SetValueResult{
		Value:            value,
		QuickPenaltyCell: value != nil && *value == models.QuickPenaltyValue,
	}

	if !scoring.IsRowComplete(m.state.Rows[handIndex], participantCount) {
		return result, nil
	}
	result.RowCompleted = true

	if scoring.IsAtMilestone(m.state) && !m.state.MilestoneShown {
		m.state.MilestoneShown = true
		result.MilestoneReached = true
	}

	if scoring.IsComplete(m.state) {
		result.MatchCompleted = true
		return result, nil
	}

	// Auto-append the next hand only when the last row just filled;
	// backfilling an earlier row leaves the tail alone.
	if handIndex == len(m.state.Rows)-1 {
		m.state.Rows = append(m.state.Rows, newRow(m.maxHand()+1, participantCount))
	}

	return result, nil
}

// AddHand appends the next empty row. A no-op while the tail row is still
// being filled, so repeated calls cannot stack empty rows.
func (m *Machine) AddHand() error {
	if m.Phase() != models.MatchPhaseInProgress {
		return fmt.Errorf("%w: match is not in progress", ErrInvalidTransition)
	}

	participantCount := len(m.state.Participants())
	if n := len(m.state.Rows); n > 0 && !scoring.IsRowComplete(m.state.Rows[n-1], participantCount) {
		return nil
	}
	m.state.Rows = append(m.state.Rows, newRow(m.maxHand()+1, participantCount))
	return nil
}

// ApplyQuickPenalty appends the fixed -101 penalty for the participant
func (m *Machine) ApplyQuickPenalty(participant string) (*models.Penalty, error) {
	return m.ApplyPenalty(participant, models.QuickPenaltyValue, models.NoteQuickPenalty)
}

// ApplyPenalty appends a manual penalty. The value must be a negative
// integer no smaller than -999.
func (m *Machine) ApplyPenalty(participant string, value int, note string) (*models.Penalty, error) {
	phase := m.Phase()
	if phase != models.MatchPhaseInProgress && phase != models.MatchPhaseComplete {
		return nil, fmt.Errorf("%w: match is not being played", ErrInvalidTransition)
	}

	if !m.isParticipant(participant) {
		return nil, fmt.Errorf("%w: unknown participant %q", ErrValidation, participant)
	}
	if value >= 0 {
		return nil, fmt.Errorf("%w: penalty value must be negative, got %d", ErrValidation, value)
	}
	if value < models.PenaltyValueMin {
		return nil, fmt.Errorf("%w: penalty value %d below %d", ErrValidation, value, models.PenaltyValueMin)
	}

	penalty := models.Penalty{
		ID:        m.deps.uuids.NewUUID(),
		Target:    participant,
		Value:     value,
		Note:      note,
		CreatedAt: m.deps.clock.Now(),
	}
	m.state.Penalties = append(m.state.Penalties, penalty)
	return &penalty, nil
}

func (m *Machine) isParticipant(participant string) bool {
	for _, id := range m.state.Participants() {
		if id == participant {
			return true
		}
	}
	return false
}

// RemovePenalty deletes the penalty with the given id. Removing an absent
// id is a no-op.
func (m *Machine) RemovePenalty(id string) {
	penalties := m.state.Penalties[:0]
	for _, penalty := range m.state.Penalties {
		if penalty.ID != id {
			penalties = append(penalties, penalty)
		}
	}
	m.state.Penalties = penalties
}

// Undo clears the last complete row and drops any rows after it, reopening
// that hand for entry. Penalties are untouched. Returns false when there is
// nothing to undo.
func (m *Machine) Undo() bool {
	participantCount := len(m.state.Participants())

	lastComplete := -1
	for i := len(m.state.Rows) - 1; i >= 0; i-- {
		if scoring.IsRowComplete(m.state.Rows[i], participantCount) {
			lastComplete = i
			break
		}
	}
	if lastComplete < 0 {
		return false
	}

	m.state.Rows[lastComplete].Values = make([]*int, participantCount)
	m.state.Rows = m.state.Rows[:lastComplete+1]

	// Allow the milestone to announce again if play drops back below it
	if scoring.CompletedHandCount(m.state) < scoring.MilestoneHand(m.state) {
		m.state.MilestoneShown = false
	}
	return true
}

// Reset discards all match data and returns to Unconfigured. Cross-match
// preferences such as the theme live outside the machine; callers carry
// those over themselves.
func (m *Machine) Reset() {
	m.state = models.NewMatchState()
	m.configured = false
}
