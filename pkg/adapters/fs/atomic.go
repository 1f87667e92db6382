package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "jot-tmp-"
)

// writeFileAtomic writes data to a file atomically by writing to a temp file
// and then renaming it to the target filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpName, err := stageTemp(filename, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName) // Clean up if we fail before rename

	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}

	return nil
}

// createFileExclusive publishes data under filename only if nothing exists
// there yet. The staged temp file is hard-linked into place, so readers see
// either no file or the complete content. It returns an error satisfying
// os.IsExist when filename is taken.
func createFileExclusive(filename string, data []byte, perm os.FileMode) error {
	tmpName, err := stageTemp(filename, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	if err := os.Link(tmpName, filename); err != nil {
		if os.IsExist(err) {
			return err
		}
		return fmt.Errorf("failed to link temp file to %s: %w", filename, err)
	}

	return nil
}

// stageTemp writes data to a synced temp file next to filename and returns
// its path.
func stageTemp(filename string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(filename)

	// Create a temporary file in the same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	fail := func(format string, err error) (string, error) {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf(format, err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		return fail("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fail("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to chmod temp file: %w", err)
	}

	return tmpFile.Name(), nil
}
