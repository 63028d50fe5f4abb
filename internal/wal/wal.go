// Package wal is the durable substrate: an append-only JSONL session log and
// an atomically replaced user state snapshot. Both are safe to share between
// independent processes via advisory file locks.
package wal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/sadopc/krep/internal/session"
)

// Log appends completed sessions to a JSONL file, one record per line. The
// file is never truncated or edited in place. Only session.Record can reach
// Append, so shown-but-skipped prescriptions cannot be persisted by
// construction.
type Log struct {
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string { return l.path }

// Append serializes rec and appends it as one line, holding an exclusive
// advisory lock for the duration of the write so concurrent processes cannot
// interleave partial lines.
func (l *Log) Append(rec session.Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	fl := flock.New(l.path)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("lock log: %w", err)
	}
	defer fl.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return f.Sync()
}

// Read parses every line of the log independently under a shared lock.
// Unparsable lines are skipped and reported in the diagnostics; they never
// abort the lines that follow. A missing log is an empty result.
func (l *Log) Read() ([]session.Record, []string, error) {
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}

	fl := flock.New(l.path)
	if err := fl.RLock(); err != nil {
		return nil, nil, fmt.Errorf("lock log: %w", err)
	}
	defer fl.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var (
		records []session.Record
		diags   []string
		lineNum int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec session.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			diags = append(diags, fmt.Sprintf("log line %d unparsable: %v", lineNum, err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, diags, fmt.Errorf("scan log: %w", err)
	}
	return records, diags, nil
}
