package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/jot/pkg/core"
	"github.com/aretw0/jot/pkg/git"
)

// DefaultWorkers bounds the number of files parsed concurrently by List.
const DefaultWorkers = 8

// Repository implements core.Repository using one file per note inside a
// single directory. Files are named "<id><ext>".
type Repository struct {
	Path       string
	git        *git.Client
	cache      *cache
	config     Config
	serializer Serializer
	logger     *slog.Logger

	mu            sync.RWMutex
	watcherActive bool
	corrupt       int
	lastCorrupt   string
	commitFails   int
	lastCommitErr string
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Format       string // "json" (default) or "yaml"
	AutoInit     bool   // git init the directory when Versioning is on and it is not a repo yet
	MustExist    bool   // fail Initialize instead of creating a missing directory
	Versioning   bool   // commit every change with git
	Workers      int
	Logger       *slog.Logger
	ErrorHandler func(error) // receives asynchronous watcher errors
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) (*Repository, error) {
	serializer, err := SerializerFor(config.Format)
	if err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	return &Repository{
		Path:       config.Path,
		git:        git.NewClient(config.Path, config.Logger),
		cache:      newCache(),
		config:     config,
		serializer: serializer,
		logger:     config.Logger,
	}, nil
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("notes directory does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat notes directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("notes path is not a directory: %s", r.Path)
		}
	} else if err := os.MkdirAll(r.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}

	if !r.config.Versioning {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !r.git.IsRepo(ctx) {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		if err := r.commit(ctx, git.CommitMessage("chore", "", "configure jot ignore"), ".gitignore"); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

// ensureIgnore keeps temp files and the git lock out of history.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	entries := []string{TempFilePrefix + "*", git.LockFile}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	existing := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !existing[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	for _, e := range missing {
		b.WriteString(e)
		b.WriteString("\n")
	}
	if err := writeFileAtomic(ignorePath, []byte(b.String()), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Create writes a note that must not exist yet. It returns core.ErrExists
// when a file with the same id is already present.
func (r *Repository) Create(ctx context.Context, n core.Note) error {
	name, err := r.filename(n.ID)
	if err != nil {
		return err
	}
	data, err := r.serializer.Serialize(n)
	if err != nil {
		return fmt.Errorf("failed to serialize note %s: %w", n.ID, err)
	}

	if err := createFileExclusive(filepath.Join(r.Path, name), data, 0o644); err != nil {
		if os.IsExist(err) {
			return core.ErrExists
		}
		return fmt.Errorf("failed to write note %s: %w", n.ID, err)
	}
	r.cache.Delete(name)

	r.record(ctx, "create", n.ID, name)
	return nil
}

// Save atomically replaces the file of an existing note.
func (r *Repository) Save(ctx context.Context, n core.Note) error {
	name, err := r.filename(n.ID)
	if err != nil {
		return err
	}
	data, err := r.serializer.Serialize(n)
	if err != nil {
		return fmt.Errorf("failed to serialize note %s: %w", n.ID, err)
	}

	if err := writeFileAtomic(filepath.Join(r.Path, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write note %s: %w", n.ID, err)
	}
	r.cache.Delete(name)

	r.record(ctx, "update", n.ID, name)
	return nil
}

// Get retrieves a note by its ID.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}
	name, err := r.filename(id)
	if err != nil {
		return core.Note{}, core.ErrNotFound
	}
	return r.load(name)
}

// List returns every readable note in the directory, in no particular
// order. Unreadable or corrupt files are logged and skipped.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	names, err := doublestar.Glob(os.DirFS(r.Path), "*"+r.serializer.Ext())
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes directory: %w", err)
	}

	results := make([]*core.Note, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	for i, name := range names {
		if !core.ValidID(r.idFromName(name)) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := r.load(name)
			if err != nil {
				if !errors.Is(err, core.ErrNotFound) && !errors.Is(err, core.ErrCorruptRecord) {
					r.logger.Warn("skipping unreadable note", "file", name, "error", err)
				}
				return nil
			}
			results[i] = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	notes := make([]core.Note, 0, len(results))
	keep := make(map[string]bool, len(names))
	for i, n := range results {
		keep[names[i]] = true
		if n != nil {
			notes = append(notes, *n)
		}
	}
	r.cache.Prune(keep)

	return notes, nil
}

// Delete removes a note file.
func (r *Repository) Delete(ctx context.Context, id string) error {
	name, err := r.filename(id)
	if err != nil {
		return core.ErrNotFound
	}

	if err := os.Remove(filepath.Join(r.Path, name)); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	r.cache.Delete(name)

	r.record(ctx, "delete", id, name)
	return nil
}

// load reads and parses a single file, consulting the cache first.
func (r *Repository) load(name string) (core.Note, error) {
	f, err := os.Open(filepath.Join(r.Path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return core.Note{}, core.ErrNotFound
		}
		return core.Note{}, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return core.Note{}, core.ErrNotFound
	}

	if n, ok := r.cache.Get(name, info.ModTime(), info.Size()); ok {
		return n, nil
	}

	parsed, err := r.serializer.Parse(f)
	if err != nil {
		r.recordCorrupt(name, err)
		return core.Note{}, fmt.Errorf("%w: %s: %v", core.ErrCorruptRecord, name, err)
	}

	n := *parsed
	n.ID = r.idFromName(name)
	if n.Tags == nil {
		n.Tags = []string{}
	}

	r.cache.Set(name, n, info.ModTime(), info.Size())
	return n, nil
}

// record commits a change when versioning is enabled. The commit message
// can be overridden through core.ChangeReasonKey. Commit failures are
// logged and counted, never returned.
func (r *Repository) record(ctx context.Context, action, id, name string) {
	if !r.config.Versioning {
		return
	}
	msg := git.CommitMessage("docs", "notes", action+" "+id)
	if reason, ok := ctx.Value(core.ChangeReasonKey).(string); ok && reason != "" {
		msg = reason
	}
	// The file change already happened; a failed commit only loses history.
	if err := r.commit(ctx, msg, name); err != nil {
		r.mu.Lock()
		r.commitFails++
		r.lastCommitErr = fmt.Sprintf("%s %s: %v", action, id, err)
		r.mu.Unlock()
		r.logger.Error("failed to commit note change", "action", action, "id", id, "error", err)
	}
}

func (r *Repository) commit(ctx context.Context, msg string, name string) error {
	unlock, err := r.git.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	if _, statErr := os.Stat(filepath.Join(r.Path, name)); os.IsNotExist(statErr) {
		err = r.git.Rm(ctx, name)
	} else {
		err = r.git.Add(ctx, name)
	}
	if err != nil {
		return err
	}
	return r.git.Commit(ctx, msg)
}

func (r *Repository) recordCorrupt(name string, err error) {
	r.mu.Lock()
	r.corrupt++
	r.lastCorrupt = name
	r.mu.Unlock()
	r.logger.Warn("corrupt note file", "file", name, "error", err)
}

func (r *Repository) filename(id string) (string, error) {
	if !core.ValidID(id) {
		return "", fmt.Errorf("invalid note id %q", id)
	}
	return id + r.serializer.Ext(), nil
}

func (r *Repository) idFromName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), r.serializer.Ext())
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
