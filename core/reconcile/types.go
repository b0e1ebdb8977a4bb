package reconcile

import "context"

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionInsert stores a record present only in the source.
	ActionInsert ActionType = "insert"
	// ActionUpdate replaces a stored record that differs from the source.
	ActionUpdate ActionType = "update"
	// ActionDelete removes a stored record the source no longer has.
	ActionDelete ActionType = "delete"
	// ActionRemarkReplace swaps every remark of one game for the source's set.
	ActionRemarkReplace ActionType = "remark_replace"
	// ActionRemarkDelete removes a single stored remark.
	ActionRemarkDelete ActionType = "remark_delete"
	// ActionFeedback adds or removes a marker on a source message.
	ActionFeedback ActionType = "feedback"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity identifier.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Payload carries the value the executor needs (the record to write, the remark to drop).
	Payload any `json:"-"`
}

// Plan contains planned actions in execution order.
type Plan struct {
	// Actions contains planned mutation operations.
	Actions []Action `json:"actions"`

	// Counts tallies the planned actions by type.
	Counts map[ActionType]int `json:"counts"`
}

// Options controls plan execution.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool
}

// Presence describes one key of a two-sided comparison.
type Presence struct {
	// Key is the entity identifier.
	Key string `json:"key"`

	// SourcePresent indicates whether the key exists on the authoritative side.
	SourcePresent bool `json:"source_present"`

	// StorePresent indicates whether the key exists in the store being repaired.
	StorePresent bool `json:"store_present"`

	// Mismatch is a readable diff (store -> source) when both sides differ, empty otherwise.
	Mismatch string `json:"mismatch,omitempty"`
}

// Executor carries out one planned action.
type Executor interface {
	Execute(ctx context.Context, action Action) error
}
