package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sadopc/krep/internal/wal"
)

// processedSuffix marks a log that has already been merged. The log is
// renamed, never deleted, to preserve an audit trail.
const processedSuffix = ".processed"

// Rollup merges the append-only log into the session table and archives the
// log by renaming it with a .processed suffix. Rows are deduplicated by
// session id, so running the rollup twice over the same log is a no-op the
// second time. Returns the number of newly inserted sessions and any
// diagnostics from reading the log.
func (s *Store) Rollup(log *wal.Log) (int, []string, error) {
	records, diags, err := log.Read()
	if err != nil {
		return 0, diags, fmt.Errorf("read log: %w", err)
	}
	if len(records) == 0 {
		return 0, diags, nil
	}

	inserted := 0
	for _, rec := range records {
		ok, err := s.InsertSession(rec)
		if err != nil {
			return inserted, diags, fmt.Errorf("roll up session %s: %w", rec.ID, err)
		}
		if ok {
			inserted++
		}
	}

	processed := log.Path() + processedSuffix
	if err := os.Rename(log.Path(), processed); err != nil {
		return inserted, diags, fmt.Errorf("archive log: %w", err)
	}
	return inserted, diags, nil
}

// CleanupProcessed removes archived .processed logs under dir. The audit
// trail is kept until the user explicitly asks for this.
func CleanupProcessed(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read data dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), processedSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
