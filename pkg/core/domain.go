// Package core holds the domain of the note store: the Note entity, the
// Repository contract that storage adapters implement and the Service that
// applies business rules on top of it.
package core

import "context"

// EventType represents the type of change observed in the notes directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a stored note.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit
// message) to repositories that keep history.
const ChangeReasonKey contextKey = "change_reason"

// WithChangeReason returns a context carrying a change reason.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, ChangeReasonKey, reason)
}
