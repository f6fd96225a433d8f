package score

import "context"

// Service defines the interface for operations on this device's match: the
// surface the rendering layer calls into.
type Service interface {
	// Configure sets match settings; valid only before the match starts
	Configure(ctx context.Context, input *ConfigureInput) (*ConfigureOutput, error)

	// StartMatch begins play with the first empty hand
	StartMatch(ctx context.Context, input *StartMatchInput) (*StartMatchOutput, error)

	// SetValue stores one sanitized score cell and reports what changed
	SetValue(ctx context.Context, input *SetValueInput) (*SetValueOutput, error)

	// AddHand appends the next empty row manually
	AddHand(ctx context.Context, input *AddHandInput) (*AddHandOutput, error)

	// Undo reopens the last completed hand
	Undo(ctx context.Context, input *UndoInput) (*UndoOutput, error)

	// ApplyPenalty records a manual penalty
	ApplyPenalty(ctx context.Context, input *ApplyPenaltyInput) (*ApplyPenaltyOutput, error)

	// ApplyQuickPenalty records the one-click -101 penalty
	ApplyQuickPenalty(ctx context.Context, input *ApplyQuickPenaltyInput) (*ApplyQuickPenaltyOutput, error)

	// RemovePenalty deletes a penalty; absent ids are a no-op
	RemovePenalty(ctx context.Context, input *RemovePenaltyInput) (*RemovePenaltyOutput, error)

	// ResetMatch discards all match data, preserving the theme
	ResetMatch(ctx context.Context, input *ResetMatchInput) (*ResetMatchOutput, error)

	// SetTheme stores the display preference
	SetTheme(ctx context.Context, input *SetThemeInput) (*SetThemeOutput, error)

	// GetState returns the current match state and phase
	GetState(ctx context.Context, input *GetStateInput) (*GetStateOutput, error)

	// GetStandings returns totals, milestone, and winner information
	GetStandings(ctx context.Context, input *GetStandingsInput) (*GetStandingsOutput, error)

	// AttachTable records that this device follows a shared table
	AttachTable(ctx context.Context, input *AttachTableInput) (*AttachTableOutput, error)

	// DetachTable drops the shared-table attachment
	DetachTable(ctx context.Context, input *DetachTableInput) (*DetachTableOutput, error)

	// ApplyRemoteState replaces the local match with a remote table's copy
	ApplyRemoteState(ctx context.Context, input *ApplyRemoteStateInput) (*ApplyRemoteStateOutput, error)
}
