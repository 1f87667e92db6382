package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, LockFile)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_LockTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	client.LockTimeout = 50 * time.Millisecond

	unlock, err := client.Lock()
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer unlock()

	_, err = client.Lock()
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

func TestCommitMessage(t *testing.T) {
	cases := map[string][3]string{
		"docs(notes): create abc": {"docs", "notes", "create abc"},
		"chore: tidy":             {"", "", "tidy"},
		"fix: patch":              {"fix", "", "patch"},
	}
	for want, in := range cases {
		if got := CommitMessage(in[0], in[1], in[2]); got != want {
			t.Errorf("CommitMessage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_InitAddCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)

	if err := client.Init(ctx); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".git")); os.IsNotExist(err) {
		t.Error(".git directory not created")
	}
	if !client.IsRepo(ctx) {
		t.Fatal("expected IsRepo to be true after init")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "a.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add(ctx, "a.json"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := client.Commit(ctx, CommitMessage("docs", "notes", "create a")); err != nil {
		t.Fatalf("commit: %v", err)
	}
	// Nothing staged.
	if err := client.Commit(ctx, "noop"); err != nil {
		t.Fatalf("empty commit should be skipped: %v", err)
	}

	log, err := client.Run(ctx, "log", "--format=%s")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(log) != "docs(notes): create a" {
		t.Errorf("unexpected log: %q", log)
	}

	status, err := client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status != "" {
		t.Errorf("expected clean tree, got %q", status)
	}
}
