package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/cemkoker/adisyon/internal/models"
)

// schemaVersion is bumped whenever the snapshot document shape changes
const schemaVersion = 1

// versionedSnapshot is the on-disk envelope
type versionedSnapshot struct {
	Version int `json:"version"`
	models.MatchSnapshot
}

func marshalSnapshot(snap *models.MatchSnapshot) ([]byte, error) {
	return json.Marshal(versionedSnapshot{
		Version:       schemaVersion,
		MatchSnapshot: *snap,
	})
}

// unmarshalSnapshot decodes a persisted document and runs it through the
// migration step. Loading is not a blind merge: missing fields are filled
// from versioned defaults and structurally invalid values are replaced, so
// a stale or hand-edited document cannot poison the in-memory state.
func unmarshalSnapshot(data []byte) (*models.MatchSnapshot, error) {
	var envelope versionedSnapshot
	envelope.CurrentPlayer = -1
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	if envelope.Version > schemaVersion {
		return nil, fmt.Errorf("snapshot schema version %d is newer than supported %d", envelope.Version, schemaVersion)
	}

	snap := envelope.MatchSnapshot
	migrate(&snap)
	return &snap, nil
}

func migrate(snap *models.MatchSnapshot) {
	defaults := models.DefaultSettings()

	if snap.Settings.Mode != models.GameModeSolo4 && snap.Settings.Mode != models.GameModeTeams2v2 {
		snap.Settings.Mode = defaults.Mode
	}
	if snap.Settings.Target <= 0 {
		snap.Settings.Target = defaults.Target
	}

	participants := models.ModeParticipants(snap.Settings.Mode)
	if len(snap.Settings.Names) != len(participants) {
		if snap.Settings.Mode == models.GameModeTeams2v2 {
			snap.Settings.Names = []string{"Takım A", "Takım B"}
		} else {
			snap.Settings.Names = defaults.Names
		}
	}

	if snap.Rows == nil {
		snap.Rows = []models.HandRow{}
	}
	// Drop rows whose value count does not fit the mode; a truncated row
	// would silently skew totals
	rows := snap.Rows[:0]
	for _, row := range snap.Rows {
		if len(row.Values) == len(participants) && row.Hand > 0 {
			rows = append(rows, row)
		}
	}
	snap.Rows = rows

	if snap.Penalties == nil {
		snap.Penalties = []models.Penalty{}
	}

	if snap.Theme != "dark" {
		snap.Theme = "light"
	}

	if snap.CurrentPlayer < 0 || snap.CurrentTable == "" {
		snap.CurrentPlayer = -1
	}
}
