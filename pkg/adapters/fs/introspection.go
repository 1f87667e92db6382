package fs

import (
	"context"
	"strings"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string `json:"path"`
	Format        string `json:"format"`
	Versioning    bool   `json:"versioning"`
	CacheSize     int    `json:"cache_size"`
	CacheHits     int    `json:"cache_hits"`
	CacheMisses   int    `json:"cache_misses"`
	CorruptReads  int    `json:"corrupt_reads"`
	LastCorrupt   string `json:"last_corrupt,omitempty"`
	WatcherActive bool   `json:"watcher_active"`
	ParallelReads int    `json:"parallel_reads"`

	// Versioning only.
	CommitFailures  int    `json:"commit_failures,omitempty"`
	LastCommitError string `json:"last_commit_error,omitempty"`
	Uncommitted     int    `json:"uncommitted,omitempty"` // paths reported by git status
	StatusError     string `json:"status_error,omitempty"`
}

// statusTimeout bounds the git status call made by State.
const statusTimeout = 2 * time.Second

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	var uncommitted int
	var statusErr string
	if r.config.Versioning {
		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		out, err := r.git.Status(ctx)
		cancel()
		if err != nil {
			statusErr = err.Error()
		} else if out != "" {
			uncommitted = len(strings.Split(out, "\n"))
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	hits, misses := r.cache.Stats()
	return RepositoryState{
		Path:          r.Path,
		Format:        strings.TrimPrefix(r.serializer.Ext(), "."),
		Versioning:    r.config.Versioning,
		CacheSize:     r.cache.Len(),
		CacheHits:     hits,
		CacheMisses:   misses,
		CorruptReads:  r.corrupt,
		LastCorrupt:   r.lastCorrupt,
		WatcherActive: r.watcherActive,
		ParallelReads: r.config.Workers,

		CommitFailures:  r.commitFails,
		LastCommitError: r.lastCommitErr,
		Uncommitted:     uncommitted,
		StatusError:     statusErr,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}
