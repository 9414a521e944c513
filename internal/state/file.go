package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// fileBackend stores a document in a single file.
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader sees either the old or the new document. With locking enabled,
// writers serialize on an in-process mutex and an advisory lock on
// "<path>.lock", which also excludes other processes such as the rotation
// trigger.
type fileBackend struct {
	path    string
	locking bool
	mu      sync.Mutex
	flock   *flock.Flock
}

func newFileBackend(path string, locking bool) (*fileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("document path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	b := &fileBackend{path: path, locking: locking}
	if locking {
		b.flock = flock.New(path + ".lock")
	}
	return b, nil
}

func (b *fileBackend) Read() ([]byte, error) {
	return os.ReadFile(b.path)
}

// Write replaces the document using atomic write (temp file + rename).
func (b *fileBackend) Write(data []byte) error {
	dir := filepath.Dir(b.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (b *fileBackend) Lock() (func(), error) {
	if !b.locking {
		return func() {}, nil
	}

	b.mu.Lock()
	if err := b.flock.Lock(); err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("acquire lock on %s: %w", b.path, err)
	}
	return func() {
		_ = b.flock.Unlock()
		b.mu.Unlock()
	}, nil
}

func (b *fileBackend) String() string { return b.path }
