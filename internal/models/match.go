package models

import (
	"time"
)

// GameMode determines how many scoring slots a match has
type GameMode string

const (
	// GameModeSolo4 is four individual players
	GameModeSolo4 GameMode = "solo4"

	// GameModeTeams2v2 is two teams of two
	GameModeTeams2v2 GameMode = "teams2v2"
)

// ModeParticipants returns the fixed, ordered participant keys for a mode.
// The keys match the original adisyon documents and never change for the
// lifetime of a match.
func ModeParticipants(mode GameMode) []string {
	switch mode {
	case GameModeTeams2v2:
		return []string{"A", "B"}
	default:
		return []string{"p0", "p1", "p2", "p3"}
	}
}

// MatchSettings is fixed once a match starts
type MatchSettings struct {
	// Mode selects the participant layout
	Mode GameMode `json:"mode"`

	// Target is the number of hands to play
	Target int `json:"target"`

	// Names holds one display name per participant slot, in mode order
	Names []string `json:"names"`
}

// DefaultSettings returns the pre-start configuration the original app ships
// with: solo4, 11 hands, Turkish placeholder names.
func DefaultSettings() MatchSettings {
	return MatchSettings{
		Mode:   GameModeSolo4,
		Target: 11,
		Names:  []string{"Oyuncu 1", "Oyuncu 2", "Oyuncu 3", "Oyuncu 4"},
	}
}

// HandRow is one scored hand. Values has one slot per participant; nil means
// the cell is still empty.
type HandRow struct {
	// Hand is the 1-based hand number, unique within a match
	Hand int `json:"hand"`

	// Values holds one entry per participant, in mode order
	Values []*int `json:"values"`
}

// Penalty is a single "siler" entry against one participant
type Penalty struct {
	// ID is the unique identifier for this penalty
	ID string `json:"id"`

	// Target is the participant key the penalty applies to
	Target string `json:"target"`

	// Value is a negative integer, at least -999
	Value int `json:"value"`

	// Note is optional free text; quick penalties carry NoteQuickPenalty
	Note string `json:"note,omitempty"`

	// CreatedAt is when the penalty was recorded
	CreatedAt time.Time `json:"createdAt"`
}

// MatchPhase represents the lifecycle state of a match
type MatchPhase string

const (
	// MatchPhaseUnconfigured indicates a fresh match with default settings
	MatchPhaseUnconfigured MatchPhase = "unconfigured"

	// MatchPhaseConfigured indicates settings are set but play has not begun
	MatchPhaseConfigured MatchPhase = "configured"

	// MatchPhaseInProgress indicates hands are being scored
	MatchPhaseInProgress MatchPhase = "in_progress"

	// MatchPhaseComplete indicates the target hand count has been reached
	MatchPhaseComplete MatchPhase = "complete"
)

// MatchState owns everything a match accumulates between reset boundaries
type MatchState struct {
	Settings  MatchSettings `json:"settings"`
	Rows      []HandRow     `json:"rows"`
	Penalties []Penalty     `json:"penalties"`

	// StartedAt is stamped when the match starts, nil before
	StartedAt *time.Time `json:"startedAt"`

	// GameStarted mirrors the original document flag
	GameStarted bool `json:"gameStarted"`

	// MilestoneShown records that the milestone standings were announced
	// once, so re-renders do not re-fire the banner
	MilestoneShown bool `json:"milestoneShown"`
}

// NewMatchState returns an empty, unconfigured match
func NewMatchState() *MatchState {
	return &MatchState{
		Settings:  DefaultSettings(),
		Rows:      []HandRow{},
		Penalties: []Penalty{},
	}
}

// Participants returns the participant keys for this match's mode
func (m *MatchState) Participants() []string {
	return ModeParticipants(m.Settings.Mode)
}

// Clone returns a deep copy, so callers can hand state across goroutine or
// replication boundaries without sharing row slices.
func (m *MatchState) Clone() *MatchState {
	if m == nil {
		return nil
	}

	out := *m
	out.Settings.Names = append([]string(nil), m.Settings.Names...)
	out.Rows = make([]HandRow, len(m.Rows))
	for i, row := range m.Rows {
		values := make([]*int, len(row.Values))
		for j, v := range row.Values {
			if v != nil {
				value := *v
				values[j] = &value
			}
		}
		out.Rows[i] = HandRow{Hand: row.Hand, Values: values}
	}
	out.Penalties = append([]Penalty(nil), m.Penalties...)
	if m.StartedAt != nil {
		startedAt := *m.StartedAt
		out.StartedAt = &startedAt
	}
	return &out
}

// MatchSnapshot is the persisted match document. It carries the match state
// plus the cross-match fields the original kept alongside it in local
// storage.
type MatchSnapshot struct {
	Settings  MatchSettings `json:"settings"`
	Rows      []HandRow     `json:"rows"`
	Penalties []Penalty     `json:"penalties"`

	// Theme is the display preference, preserved across reset
	Theme string `json:"theme"`

	StartedAt      *time.Time `json:"startedAt"`
	GameStarted    bool       `json:"gameStarted"`
	MilestoneShown bool       `json:"milestoneShown"`

	// CurrentTable is the id of the table this device is attached to, if any
	CurrentTable string `json:"currentTable,omitempty"`

	// CurrentPlayer is this device's slot index on the table, -1 when unset
	CurrentPlayer int `json:"currentPlayer"`

	// IsTableHost indicates this device created the table
	IsTableHost bool `json:"isTableHost"`
}
