package fs_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jot/pkg/adapters/fs"
	"github.com/aretw0/jot/pkg/core"
	"github.com/aretw0/jot/pkg/git"
)

// setupRepo creates an initialized repository inside a temp dir and returns
// it together with the notes directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	notesDir := filepath.Join(t.TempDir(), "notes")
	cfg := fs.Config{Path: notesDir, AutoInit: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo, err := fs.NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, notesDir
}

func sampleNote(id string) core.Note {
	ts := core.NewTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return core.Note{
		ID:        id,
		Title:     "Title " + id,
		Content:   "body of " + id,
		Tags:      []string{"a", "b"},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, path := setupRepo(t)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, err := fs.NewRepository(fs.Config{
			Path:      filepath.Join(t.TempDir(), "missing"),
			MustExist: true,
		})
		require.NoError(t, err)
		assert.Error(t, repo.Initialize(context.Background()))
	})

	t.Run("Inits Git Repo when Versioning", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		_, path := setupRepo(t, func(c *fs.Config) { c.Versioning = true })

		_, err := os.Stat(filepath.Join(path, ".git"))
		require.NoError(t, err)

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), fs.TempFilePrefix+"*")
	})

	t.Run("Rejects Unknown Format", func(t *testing.T) {
		_, err := fs.NewRepository(fs.Config{Path: t.TempDir(), Format: "toml"})
		assert.Error(t, err)
	})
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	n := sampleNote("20240301120000000000")
	require.NoError(t, repo.Create(ctx, n))

	raw, err := os.ReadFile(filepath.Join(dir, n.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"title\": \"Title 20240301120000000000\"")
	assert.Contains(t, string(raw), "\"created_at\": \"2024-03-01T12:00:00.000000Z\"")

	got, err := repo.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	t.Run("Duplicate Create Fails", func(t *testing.T) {
		err := repo.Create(ctx, n)
		assert.ErrorIs(t, err, core.ErrExists)
	})

	t.Run("Missing Note", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		_, err := repo.Get(ctx, "../etc/passwd")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestRepository_FilenameIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	body := `{"id":"other","title":"t","content":"","tags":null,"created_at":"2024-01-01T00:00:00.000000Z","updated_at":"2024-01-01T00:00:00.000000Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.json"), []byte(body), 0o644))

	got, err := repo.Get(ctx, "real")
	require.NoError(t, err)
	assert.Equal(t, "real", got.ID)
	assert.Equal(t, []string{}, got.Tags)
}

func TestRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	n := sampleNote("n1")
	require.NoError(t, repo.Create(ctx, n))
	_, err := repo.Get(ctx, n.ID) // warm the cache
	require.NoError(t, err)

	n.Title = "changed"
	n.UpdatedAt = core.NewTimestamp(n.UpdatedAt.Add(time.Second))
	require.NoError(t, repo.Save(ctx, n))

	got, err := repo.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Title)
	requireClean(t, dir)
}

func TestRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	require.NoError(t, repo.Create(ctx, sampleNote("good")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o644))

	valid, err := os.ReadFile(filepath.Join(dir, "good.json"))
	require.NoError(t, err)
	trailing := append(valid, []byte("\n{\"truncated")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trailing.json"), trailing, 0o644))

	_, err = repo.Get(ctx, "bad")
	assert.ErrorIs(t, err, core.ErrCorruptRecord)
	_, err = repo.Get(ctx, "trailing")
	assert.ErrorIs(t, err, core.ErrCorruptRecord)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "good", notes[0].ID)

	state := repo.State().(fs.RepositoryState)
	assert.GreaterOrEqual(t, state.CorruptReads, 5)
	assert.NotEmpty(t, state.LastCorrupt)
}

func TestRepository_ListSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	require.NoError(t, repo.Create(ctx, sampleNote("keep")))
	for _, name := range []string{"readme.txt", ".hidden.json", fs.TempFilePrefix + "123"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "keep", notes[0].ID)
}

func TestRepository_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	for i := range 5 {
		require.NoError(t, repo.Create(ctx, sampleNote(fmt.Sprintf("n%d", i))))
	}

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, 5, state.CacheSize)
	assert.Equal(t, 5, state.CacheHits)
}

func TestRepository_ListCancelled(t *testing.T) {
	repo, _ := setupRepo(t)
	require.NoError(t, repo.Create(context.Background(), sampleNote("x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	require.NoError(t, repo.Create(ctx, sampleNote("gone")))
	require.NoError(t, repo.Delete(ctx, "gone"))

	_, err := os.Stat(filepath.Join(dir, "gone.json"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, repo.Delete(ctx, "gone"), core.ErrNotFound)
	_, err = repo.Get(ctx, "gone")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_YAML(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t, func(c *fs.Config) { c.Format = fs.FormatYAML })

	n := sampleNote("y1")
	require.NoError(t, repo.Create(ctx, n))

	_, err := os.Stat(filepath.Join(dir, "y1.yaml"))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "y1")
	require.NoError(t, err)
	assert.Equal(t, n, got)

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, "yaml", state.Format)
}

func TestRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo, dir := setupRepo(t)

	t.Run("Distinct IDs", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.Create(ctx, sampleNote(fmt.Sprintf("c%02d", i))))
			}()
		}
		wg.Wait()

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 50)
	})

	t.Run("Same ID", func(t *testing.T) {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Create(ctx, sampleNote("contested"))
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, core.ErrExists)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	requireClean(t, dir)
}

func TestRepository_Versioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	repo, dir := setupRepo(t, func(c *fs.Config) { c.Versioning = true })

	n := sampleNote("v1")
	require.NoError(t, repo.Create(ctx, n))
	n.Title = "second"
	require.NoError(t, repo.Save(core.WithChangeReason(ctx, "docs(notes): retitle v1"), n))
	require.NoError(t, repo.Delete(ctx, "v1"))

	out, err := git.NewClient(dir, nil).Run(ctx, "log", "--format=%s")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "docs(notes): delete v1", lines[0])
	assert.Equal(t, "docs(notes): retitle v1", lines[1])
	assert.Equal(t, "docs(notes): create v1", lines[2])

	state := repo.State().(fs.RepositoryState)
	assert.Zero(t, state.Uncommitted)
	assert.Empty(t, state.StatusError)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644))
	state = repo.State().(fs.RepositoryState)
	assert.Equal(t, 1, state.Uncommitted)
}

func TestRepository_CommitFailureKeepsChange(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	repo, dir := setupRepo(t, func(c *fs.Config) { c.Versioning = true })

	require.NoError(t, repo.Create(ctx, sampleNote("kept")))

	// Point .git at a directory that does not exist so every commit fails.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, ".git")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: "+filepath.Join(dir, "missing")+"\n"), 0o644))

	require.NoError(t, repo.Delete(ctx, "kept"))
	_, err := os.Stat(filepath.Join(dir, "kept.json"))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, repo.Delete(ctx, "kept"), core.ErrNotFound)

	require.NoError(t, repo.Create(ctx, sampleNote("after")))
	got, err := repo.Get(ctx, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", got.ID)

	state := repo.State().(fs.RepositoryState)
	assert.Equal(t, 2, state.CommitFailures)
	assert.Contains(t, state.LastCommitError, "create after")
	assert.NotEmpty(t, state.StatusError)
}

func requireClean(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), fs.TempFilePrefix), "temp file left behind: %s", e.Name())
	}
}
