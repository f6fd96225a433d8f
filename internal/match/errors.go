package match

import "errors"

// Define errors
var (
	// ErrValidation covers user-correctable input: bad settings, empty
	// names, out-of-range penalty values
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned for operations not allowed in the
	// match's current phase
	ErrInvalidTransition = errors.New("invalid match transition")

	ErrNilConfig        = errors.New("config cannot be nil")
	ErrNilClock         = errors.New("clock cannot be nil")
	ErrNilUUIDGenerator = errors.New("UUID generator cannot be nil")
)
