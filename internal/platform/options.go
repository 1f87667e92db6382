package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/jot/pkg/core"
)

// options holds the internal configuration for the jot service.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	clock        func() time.Time
	idScheme     string
	format       string
	versioning   bool
	autoInit     bool
	mustExist    bool
	workers      int
	errorHandler func(error)
}

// Option defines a functional option for configuring jot.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		idScheme: core.IDSchemeTimestamp,
		autoInit: true,
	}
}

// WithLogger sets the logger for the service and the repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDScheme selects how new note ids are generated ("timestamp" or "uuid").
func WithIDScheme(scheme string) Option {
	return func(o *options) {
		o.idScheme = scheme
	}
}

// WithFormat selects the on-disk note format ("json" or "yaml").
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithVersioning commits every change to a git repository in the notes
// directory. Disabled by default.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithAutoInit runs git init when versioning is on and the directory is not
// a repository yet. Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist refuses to create a missing notes directory.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWorkers bounds how many note files are parsed concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// watch loop, which would otherwise only be logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
