package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jot/pkg/core"
)

// Watch reports changes to note files whose names match pattern (a
// doublestar glob, "*.json" style). An empty pattern matches every note.
// The returned channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*" + r.serializer.Ext()
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	events := make(chan core.Event, 64)
	w := &watchWorker{
		repo:    r,
		pattern: pattern,
		events:  events,
		watcher: watcher,
		known:   r.existingNames(),
	}

	r.setWatcherActive(true)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.reportError(fmt.Errorf("watcher panic: %w", err))
	}))

	return events, nil
}

type watchWorker struct {
	repo    *Repository
	pattern string
	events  chan core.Event
	watcher *fsnotify.Watcher
	known   map[string]bool
}

func (w *watchWorker) run(ctx context.Context) error {
	defer close(w.events)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := w.translate(event)
			if !ok {
				continue
			}
			select {
			case w.events <- e:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.reportError(err)
		}
	}
}

// translate filters a raw fsnotify event and maps it to a note event.
// Atomic saves surface as a Create on the final name, so a Create for a
// file already known to exist is reported as a modification.
func (w *watchWorker) translate(event fsnotify.Event) (core.Event, bool) {
	name := filepath.Base(event.Name)
	w.repo.logger.Debug("event received", "name", name, "op", event.Op.String())

	if strings.HasPrefix(name, TempFilePrefix) || strings.HasPrefix(name, ".") {
		return core.Event{}, false
	}
	if !strings.HasSuffix(name, w.repo.serializer.Ext()) {
		return core.Event{}, false
	}
	if match, err := doublestar.Match(w.pattern, name); err != nil || !match {
		return core.Event{}, false
	}
	id := w.repo.idFromName(name)
	if !core.ValidID(id) {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
		delete(w.known, name)
	case event.Has(fsnotify.Create):
		t = core.EventCreate
		if w.known[name] {
			t = core.EventModify
		}
		w.known[name] = true
	case event.Has(fsnotify.Write):
		t = core.EventModify
		w.known[name] = true
	default:
		return core.Event{}, false
	}

	w.repo.cache.Delete(name)
	return core.Event{Type: t, ID: id, Timestamp: time.Now().Unix()}, true
}

func (r *Repository) existingNames() map[string]bool {
	known := make(map[string]bool)
	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return known
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), r.serializer.Ext()) {
			known[e.Name()] = true
		}
	}
	return known
}

func (r *Repository) reportError(err error) {
	r.logger.Error("watcher error", "error", err)
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}
