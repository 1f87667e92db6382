package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface keeps the core independent of the underlying
// storage mechanism.
type Repository interface {
	// Create persists a new note. It returns ErrExists if the id is taken.
	Create(ctx context.Context, n Note) error

	// Save replaces a stored note.
	Save(ctx context.Context, n Note) error

	// Get retrieves a note by its ID. It returns ErrNotFound when absent and
	// ErrCorruptRecord when the stored record cannot be parsed.
	Get(ctx context.Context, id string) (Note, error)

	// List returns every readable note. Corrupt records are skipped.
	List(ctx context.Context) ([]Note, error)

	// Delete removes a note by its ID. It returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (directories, git init).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by repositories that can report external changes.
type Watchable interface {
	// Watch emits an Event for every change to a note whose file name
	// matches pattern. The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
