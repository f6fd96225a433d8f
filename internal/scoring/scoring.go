// Package scoring computes totals, milestones, and winners over match state
// snapshots. Everything here is a pure function; the state machine and the
// table registry call in, nothing calls out.
package scoring

import (
	"strconv"
	"strings"

	"github.com/cemkoker/adisyon/internal/models"
)

// participantIndex resolves a participant key to its slot in mode order,
// or -1 if the key does not belong to the match's mode.
func participantIndex(state *models.MatchState, participant string) int {
	for i, id := range state.Participants() {
		if id == participant {
			return i
		}
	}
	return -1
}

// HandTotal sums the participant's hand values over all rows. Empty cells
// count as zero.
func HandTotal(state *models.MatchState, participant string) int {
	index := participantIndex(state, participant)
	if index < 0 {
		return 0
	}

	sum := 0
	for _, row := range state.Rows {
		if index < len(row.Values) && row.Values[index] != nil {
			sum += *row.Values[index]
		}
	}
	return sum
}

// PenaltyTotal sums the values of penalties targeting the participant
func PenaltyTotal(state *models.MatchState, participant string) int {
	sum := 0
	for _, penalty := range state.Penalties {
		if penalty.Target == participant {
			sum += penalty.Value
		}
	}
	return sum
}

// GrandTotal is hand total plus penalty total
func GrandTotal(state *models.MatchState, participant string) int {
	return HandTotal(state, participant) + PenaltyTotal(state, participant)
}

// IsRowComplete is true when every one of the row's cells holds a value
func IsRowComplete(row models.HandRow, participantCount int) bool {
	if len(row.Values) != participantCount {
		return false
	}
	for _, v := range row.Values {
		if v == nil {
			return false
		}
	}
	return true
}

// CompletedHandCount counts complete rows. No ordering assumption: rows
// completed out of sequence still count.
func CompletedHandCount(state *models.MatchState) int {
	participantCount := len(state.Participants())
	count := 0
	for _, row := range state.Rows {
		if IsRowComplete(row, participantCount) {
			count++
		}
	}
	return count
}

// MilestoneHand is the second-to-last hand, where interim standings are
// surfaced
func MilestoneHand(state *models.MatchState) int {
	return state.Settings.Target - 1
}

// IsAtMilestone is true while exactly the milestone number of hands is
// complete. Level-triggered: callers that announce the milestone should
// track that they already did (see MatchState.MilestoneShown).
func IsAtMilestone(state *models.MatchState) bool {
	milestone := MilestoneHand(state)
	return milestone > 0 && CompletedHandCount(state) == milestone
}

// IsComplete is true once the target number of hands is complete
func IsComplete(state *models.MatchState) bool {
	return CompletedHandCount(state) >= state.Settings.Target
}

// Standing is one participant's score breakdown
type Standing struct {
	Participant string `json:"participant"`
	Name        string `json:"name"`
	HandTotal   int    `json:"handTotal"`
	Penalties   int    `json:"penalties"`
	Total       int    `json:"total"`
}

// Standings returns the per-participant breakdown in mode order
func Standings(state *models.MatchState) []Standing {
	participants := state.Participants()
	standings := make([]Standing, len(participants))
	for i, id := range participants {
		name := id
		if i < len(state.Settings.Names) {
			name = state.Settings.Names[i]
		}
		handTotal := HandTotal(state, id)
		penalties := PenaltyTotal(state, id)
		standings[i] = Standing{
			Participant: id,
			Name:        name,
			HandTotal:   handTotal,
			Penalties:   penalties,
			Total:       handTotal + penalties,
		}
	}
	return standings
}

// Winner returns the standing with the highest grand total, or nil while the
// match is incomplete. Higher wins: in okey scoring, accumulated points count
// toward victory. Ties keep the earlier participant in mode order.
func Winner(state *models.MatchState) *Standing {
	if !IsComplete(state) {
		return nil
	}

	standings := Standings(state)
	winner := standings[0]
	for _, standing := range standings[1:] {
		if standing.Total > winner.Total {
			winner = standing
		}
	}
	return &winner
}

// SanitizeHandValue coerces raw score input to a value in
// [HandValueMin, HandValueMax], or nil for anything empty, non-numeric, or
// out of range. Bad input becomes an empty cell rather than an error so
// score entry is never blocked.
func SanitizeHandValue(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}

	if value < models.HandValueMin || value > models.HandValueMax {
		return nil
	}

	return &value
}
