package models

import (
	"time"
)

// PlayerSlot is a fixed seat within a table
type PlayerSlot struct {
	// Name is the display name shown to other players
	Name string `json:"name"`

	// Online indicates the slot currently has a connected player
	Online bool `json:"online"`

	// IsHost indicates this slot created the table
	IsHost bool `json:"isHost"`

	// LastSeen is when the slot last joined or refreshed presence
	LastSeen *time.Time `json:"lastSeen"`
}

// Table is a shared multiplayer session wrapping one match and a roster of
// player slots. Passwords are stored in plaintext; this is a scorekeeping
// tool, not an access-control system.
type Table struct {
	// ID is the unique identifier for the table
	ID string `json:"id"`

	// Name is the table's display name
	Name string `json:"name"`

	// Password gates joining, compared verbatim
	Password string `json:"password"`

	// HostSlot is the slot index that owns the table, 0 on creation
	HostSlot int `json:"hostSlot"`

	// Players has one entry per participant position
	Players []PlayerSlot `json:"players"`

	// MatchState is the embedded match, exclusively owned by this table
	MatchState *MatchState `json:"matchState"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`

	// UpdatedAt is stamped on every write; replication listeners use it to
	// debounce echoes of their own pushes
	UpdatedAt time.Time `json:"updatedAt"`
}

// OnlineCount returns how many slots currently hold a connected player
func (t *Table) OnlineCount() int {
	count := 0
	for _, p := range t.Players {
		if p.Online {
			count++
		}
	}
	return count
}

// GameCanStart is true when every slot is online
func (t *Table) GameCanStart() bool {
	return len(t.Players) > 0 && t.OnlineCount() == len(t.Players)
}

// AllOffline is true when no slot is online
func (t *Table) AllOffline() bool {
	return t.OnlineCount() == 0
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}

	out := *t
	out.Players = make([]PlayerSlot, len(t.Players))
	for i, p := range t.Players {
		out.Players[i] = p
		if p.LastSeen != nil {
			lastSeen := *p.LastSeen
			out.Players[i].LastSeen = &lastSeen
		}
	}
	out.MatchState = t.MatchState.Clone()
	return &out
}
