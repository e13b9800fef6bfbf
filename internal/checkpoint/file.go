package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/gofrs/flock"
)

// FileStore implements [Store] and [Locker] on a single plain-text file.
type FileStore struct {
	path string
	lock *flock.Flock
}

var (
	_ Store  = (*FileStore)(nil)
	_ Locker = (*FileStore)(nil)
)

// NewFileStore creates a store backed by the file at path. The file is not touched until the first Write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the checkpoint file location.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the identifier stored in the file with surrounding whitespace trimmed.
// A missing or blank file reads as absent.
func (s *FileStore) Read(_ context.Context) (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s: %v", shared.ErrCheckpointIO, s.path, err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Write replaces the file contents with id.
//
// The identifier goes to a temp file in the same directory which is then renamed over the checkpoint,
// so a crash leaves either the previous identifier or the new one.
func (s *FileStore) Write(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty checkpoint identifier", shared.ErrInvalidInput)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", shared.ErrCheckpointIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(id); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write: %v", shared.ErrCheckpointIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync: %v", shared.ErrCheckpointIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", shared.ErrCheckpointIO, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", shared.ErrCheckpointIO, err)
	}
	return nil
}

// Clear deletes the checkpoint file.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", shared.ErrCheckpointIO, s.path, err)
	}
	return nil
}

// Lock takes an exclusive advisory lock on "<path>.lock" without blocking.
//
// Returns [shared.ErrCheckpointLocked] when another process holds it.
func (s *FileStore) Lock() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("%w: acquire lock: %v", shared.ErrCheckpointIO, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrCheckpointLocked, s.lock.Path())
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (s *FileStore) Unlock() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("%w: release lock: %v", shared.ErrCheckpointIO, err)
	}
	return nil
}
