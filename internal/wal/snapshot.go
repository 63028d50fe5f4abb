package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/sadopc/krep/internal/progression"
)

// Snapshot persists the UserState as a single JSON file, replaced atomically
// on save so a concurrent reader never observes a half-written state. A lock
// sidecar serializes readers and writers; locking the state file itself would
// race with the rename.
type Snapshot struct {
	path string
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) Path() string { return s.path }

func (s *Snapshot) lockFile() *flock.Flock {
	return flock.New(s.path + ".lock")
}

// Load reads the snapshot under the exclusive lock. A missing file is an
// empty state; an unreadable or unparsable one falls back to an empty state
// with a diagnostic. Load never fails hard.
func (s *Snapshot) Load() (*progression.UserState, []string) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return progression.NewUserState(), nil
	}

	fl := s.lockFile()
	if err := fl.Lock(); err != nil {
		return progression.NewUserState(), []string{fmt.Sprintf("lock state file: %v", err)}
	}
	defer fl.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return progression.NewUserState(), []string{fmt.Sprintf("read state file: %v", err)}
	}

	var us progression.UserState
	if err := json.Unmarshal(data, &us); err != nil {
		return progression.NewUserState(), []string{fmt.Sprintf("state file unparsable, using defaults: %v", err)}
	}
	if us.Progressions == nil {
		us.Progressions = make(map[string]*progression.State)
	}
	return &us, nil
}

// Save writes the state to a temporary file and atomically renames it over
// the previous snapshot, holding the same exclusive lock Load takes.
func (s *Snapshot) Save(us *progression.UserState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	fl := s.lockFile()
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	defer fl.Unlock()

	data, err := json.Marshal(us)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Update loads the state, applies fn, and saves the result. Diagnostics from
// the load are returned alongside any save error.
func (s *Snapshot) Update(fn func(*progression.UserState)) (*progression.UserState, []string, error) {
	us, diags := s.Load()
	fn(us)
	if err := s.Save(us); err != nil {
		return us, diags, err
	}
	return us, diags, nil
}
