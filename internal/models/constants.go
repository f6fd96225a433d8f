package models

import "time"

// Score entry bounds. Anything outside the range is coerced to an empty
// cell, never rejected, so data entry is never blocked.
const (
	// HandValueMin is the lowest accepted hand value
	HandValueMin = -101

	// HandValueMax is the highest accepted hand value
	HandValueMax = 999

	// QuickPenaltyValue is the fixed one-click "siler" deduction
	QuickPenaltyValue = -101

	// PenaltyValueMin bounds manual penalties; values must also be negative
	PenaltyValueMin = -999
)

// NoteQuickPenalty tags penalties added through the one-click shortcut.
// The note, not the -101 value, distinguishes quick from manual penalties.
const NoteQuickPenalty = "quick"

// Presence and cleanup timing. These are part of the wire behavior shared
// with other clients and must not drift.
const (
	// PresenceTimeout is how long a silent slot stays online
	PresenceTimeout = 5 * time.Minute

	// CleanupGracePeriod is how long an all-offline table survives before
	// it is garbage-collected
	CleanupGracePeriod = 5 * time.Minute

	// SweepInterval is how often stale presence is swept
	SweepInterval = 30 * time.Second

	// MilestoneBannerDuration is how long the milestone standings stay up
	MilestoneBannerDuration = 10 * time.Second
)
