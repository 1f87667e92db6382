package jot

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/jot/internal/platform"
	"github.com/aretw0/jot/pkg/core"
)

// --- Types ---

// Note is a stored note.
type Note = core.Note

// NoteInput carries the caller-editable fields of a note.
type NoteInput = core.NoteInput

// Query filters and orders a listing.
type Query = core.Query

// Service is the note store.
type Service = core.Service

// --- Configuration ---

// Option defines a functional option for configuring jot.
type Option = platform.Option

// WithLogger sets the logger for the service and the repository.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDScheme selects "timestamp" (default) or "uuid" ids.
func WithIDScheme(scheme string) Option {
	return platform.WithIDScheme(scheme)
}

// WithFormat selects the on-disk format, "json" (default) or "yaml".
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithVersioning commits every change to git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit runs git init when versioning needs a repository.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist refuses to create a missing notes directory.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithWorkers bounds how many note files are parsed concurrently.
func WithWorkers(n int) Option {
	return platform.WithWorkers(n)
}

// WithWatcherErrorHandler registers a callback for watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a note Service over the directory at path.
func New(path string, opts ...Option) (*core.Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// --- Utils ---

// FindConfig looks upwards from startDir for a jot config file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

// WithChangeReason overrides the commit message recorded for a change when
// versioning is enabled.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return core.WithChangeReason(ctx, reason)
}
