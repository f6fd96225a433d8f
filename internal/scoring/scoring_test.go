package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cemkoker/adisyon/internal/models"
)

func intPtr(v int) *int {
	return &v
}

// newTestState builds a solo4 match with the given target and rows
func newTestState(target int, rows []models.HandRow) *models.MatchState {
	state := models.NewMatchState()
	state.Settings.Target = target
	state.Rows = rows
	state.GameStarted = true
	return state
}

func TestSanitizeHandValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{name: "plain value", raw: "42", want: intPtr(42)},
		{name: "negative value", raw: "-50", want: intPtr(-50)},
		{name: "quick penalty value", raw: "-101", want: intPtr(-101)},
		{name: "lower bound", raw: "-101", want: intPtr(-101)},
		{name: "upper bound", raw: "999", want: intPtr(999)},
		{name: "below range", raw: "-102", want: nil},
		{name: "above range", raw: "1000", want: nil},
		{name: "empty", raw: "", want: nil},
		{name: "whitespace only", raw: "   ", want: nil},
		{name: "surrounding whitespace", raw: " 7 ", want: intPtr(7)},
		{name: "non-numeric", raw: "abc", want: nil},
		{name: "float", raw: "1.5", want: nil},
		{name: "zero", raw: "0", want: intPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHandValue(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestHandTotal(t *testing.T) {
	state := newTestState(11, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(10), intPtr(20), nil, intPtr(-5)}},
		{Hand: 2, Values: []*int{intPtr(3), nil, nil, nil}},
	})

	assert.Equal(t, 13, HandTotal(state, "p0"))
	assert.Equal(t, 20, HandTotal(state, "p1"))
	assert.Equal(t, 0, HandTotal(state, "p2"), "empty cells count as zero")
	assert.Equal(t, -5, HandTotal(state, "p3"))
	assert.Equal(t, 0, HandTotal(state, "nobody"), "unknown participant totals zero")
}

func TestPenaltyTotal(t *testing.T) {
	state := newTestState(11, nil)
	state.Penalties = []models.Penalty{
		{ID: "a", Target: "p0", Value: -101},
		{ID: "b", Target: "p0", Value: -50},
		{ID: "c", Target: "p2", Value: -101},
	}

	assert.Equal(t, -151, PenaltyTotal(state, "p0"))
	assert.Equal(t, 0, PenaltyTotal(state, "p1"))
	assert.Equal(t, -101, PenaltyTotal(state, "p2"))
}

func TestGrandTotal(t *testing.T) {
	state := newTestState(11, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(100), intPtr(40), intPtr(30), intPtr(20)}},
	})
	state.Penalties = []models.Penalty{
		{ID: "a", Target: "p0", Value: -101},
	}

	assert.Equal(t, -1, GrandTotal(state, "p0"))
	assert.Equal(t, 40, GrandTotal(state, "p1"))
}

func TestIsRowComplete(t *testing.T) {
	full := models.HandRow{Hand: 1, Values: []*int{intPtr(1), intPtr(2), intPtr(3), intPtr(4)}}
	partial := models.HandRow{Hand: 2, Values: []*int{intPtr(1), nil, intPtr(3), intPtr(4)}}
	short := models.HandRow{Hand: 3, Values: []*int{intPtr(1), intPtr(2)}}

	assert.True(t, IsRowComplete(full, 4))
	assert.False(t, IsRowComplete(partial, 4))
	assert.False(t, IsRowComplete(short, 4), "row sized for a different mode is not complete")
}

func TestCompletedHandCountOutOfOrder(t *testing.T) {
	// Hand 2 finished before hand 1; both still count
	state := newTestState(11, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(1), nil, intPtr(3), intPtr(4)}},
		{Hand: 2, Values: []*int{intPtr(1), intPtr(2), intPtr(3), intPtr(4)}},
		{Hand: 3, Values: []*int{intPtr(1), intPtr(2), intPtr(3), intPtr(4)}},
	})

	assert.Equal(t, 2, CompletedHandCount(state))
}

func TestMilestone(t *testing.T) {
	fullRow := func() models.HandRow {
		return models.HandRow{Values: []*int{intPtr(1), intPtr(2), intPtr(3), intPtr(4)}}
	}

	state := newTestState(3, []models.HandRow{fullRow()})
	assert.Equal(t, 2, MilestoneHand(state))
	assert.False(t, IsAtMilestone(state), "one of three hands is below the milestone")

	state.Rows = append(state.Rows, fullRow())
	assert.True(t, IsAtMilestone(state), "two of three hands is the milestone")

	state.Rows = append(state.Rows, fullRow())
	assert.False(t, IsAtMilestone(state), "a complete match is past the milestone")
	assert.True(t, IsComplete(state))
}

func TestMilestoneDisabledForTargetOne(t *testing.T) {
	state := newTestState(1, nil)
	assert.False(t, IsAtMilestone(state), "target 1 has no milestone hand")
}

func TestStandingsTeams(t *testing.T) {
	state := models.NewMatchState()
	state.Settings = models.MatchSettings{
		Mode:   models.GameModeTeams2v2,
		Target: 5,
		Names:  []string{"Takım A", "Takım B"},
	}
	state.GameStarted = true
	state.Rows = []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(50), intPtr(30)}},
	}
	state.Penalties = []models.Penalty{
		{ID: "a", Target: "B", Value: -101},
	}

	standings := Standings(state)
	require.Len(t, standings, 2)

	assert.Equal(t, "A", standings[0].Participant)
	assert.Equal(t, "Takım A", standings[0].Name)
	assert.Equal(t, 50, standings[0].Total)

	assert.Equal(t, "B", standings[1].Participant)
	assert.Equal(t, 30, standings[1].HandTotal)
	assert.Equal(t, -101, standings[1].Penalties)
	assert.Equal(t, -71, standings[1].Total)
}

func TestWinner(t *testing.T) {
	state := newTestState(1, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(10), intPtr(50), intPtr(20), intPtr(30)}},
	})

	winner := Winner(state)
	require.NotNil(t, winner)
	assert.Equal(t, "p1", winner.Participant)
	assert.Equal(t, 50, winner.Total)
}

func TestWinnerNilWhileIncomplete(t *testing.T) {
	state := newTestState(2, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(10), intPtr(50), intPtr(20), intPtr(30)}},
	})

	assert.Nil(t, Winner(state))
}

func TestWinnerTieKeepsEarlierParticipant(t *testing.T) {
	state := newTestState(1, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(40), intPtr(40), intPtr(10), intPtr(5)}},
	})

	winner := Winner(state)
	require.NotNil(t, winner)
	assert.Equal(t, "p0", winner.Participant)
}

func TestWinnerAccountsForPenalties(t *testing.T) {
	state := newTestState(1, []models.HandRow{
		{Hand: 1, Values: []*int{intPtr(40), intPtr(50), intPtr(10), intPtr(5)}},
	})
	state.Penalties = []models.Penalty{
		{ID: "a", Target: "p1", Value: -101},
	}

	winner := Winner(state)
	require.NotNil(t, winner)
	assert.Equal(t, "p0", winner.Participant)
}
