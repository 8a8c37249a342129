// Package savedata persists the opaque state blob of the network stack.
//
// The file is guarded by an advisory lock so two clients never share one
// identity, and every save goes through a temporary file that is renamed
// into place, so a crash mid-write leaves the previous state intact.
package savedata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

// ErrLocked indicates that another process holds the savedata lock.
var ErrLocked = errors.New("savedata is in use by another process")

// ErrClosed indicates use of a closed store.
var ErrClosed = errors.New("savedata store is closed")

// Store reads and writes one savedata file.
type Store struct {
	path string
	lock *flock.Flock
}

// Open locks path for exclusive use by this process.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("savedata path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create savedata directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock savedata: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Open",
		"path":     path,
	}).Info("Savedata locked")
	return &Store{path: path, lock: lock}, nil
}

// Path returns the savedata file path.
func (s *Store) Path() string { return s.path }

// Load returns the saved state, or nil when nothing has been saved yet.
func (s *Store) Load() ([]byte, error) {
	if s.lock == nil {
		return nil, ErrClosed
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"path":     s.path,
		}).Info("No savedata found, starting with a new identity")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read savedata: %w", err)
	}
	return data, nil
}

// Save replaces the saved state with data.
func (s *Store) Save(data []byte) error {
	if s.lock == nil {
		return ErrClosed
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write savedata: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Save",
				"path":     tmp,
				"error":    rmErr.Error(),
			}).Debug("Failed to remove temporary savedata")
		}
		return fmt.Errorf("replace savedata: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Save",
		"path":     s.path,
		"size":     len(data),
	}).Debug("Savedata written")
	return nil
}

// Close releases the lock. Further use of the store fails with ErrClosed.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}
