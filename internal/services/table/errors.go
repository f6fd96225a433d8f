package table

import "errors"

// Define errors
var (
	// ErrTableNotFound means the table id resolves to nothing
	ErrTableNotFound = errors.New("table not found")

	// ErrWrongPassword means the supplied password does not match
	ErrWrongPassword = errors.New("wrong table password")

	// ErrSlotOccupied means the target slot already has an online player
	ErrSlotOccupied = errors.New("slot is already occupied")

	// ErrInvalidSlot means the slot index is out of range
	ErrInvalidSlot = errors.New("invalid slot index")

	// ErrGameCannotStart means not every slot is online yet
	ErrGameCannotStart = errors.New("all players must be online to start")

	ErrNilConfig        = errors.New("config cannot be nil")
	ErrNilReplicator    = errors.New("replicator cannot be nil")
	ErrNilClock         = errors.New("clock cannot be nil")
	ErrNilUUIDGenerator = errors.New("UUID generator cannot be nil")
)

// errNoChange lets a mutate closure report that it left the document
// untouched, so nothing is replicated.
var errNoChange = errors.New("no change")
