// Package history provides the ordered session history view the prescription
// engine consumes. Entries are either real persisted sessions or
// shown-but-skipped prescriptions; the latter exist only in memory and cannot
// reach the persistence layers, which accept session.Record alone.
package history

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/catalog"
	"github.com/sadopc/krep/internal/session"
	"github.com/sadopc/krep/internal/store"
	"github.com/sadopc/krep/internal/wal"
)

// Entry is one element of the recent-history view. Exactly two types satisfy
// it: Real and Skipped.
type Entry interface {
	DefinitionID() string
	OccurredAt() time.Time

	sealed()
}

// Real wraps a performed, persisted session.
type Real struct {
	Record session.Record
}

func (r Real) DefinitionID() string { return r.Record.DefinitionID }

func (r Real) OccurredAt() time.Time { return r.Record.PerformedAt }

func (Real) sealed() {}

// Skipped is a prescription that was shown and declined. It is retained only
// to influence rotation; it carries no session record to persist.
type Skipped struct {
	DefID   string
	ShownAt time.Time
}

func (s Skipped) DefinitionID() string { return s.DefID }

func (s Skipped) OccurredAt() time.Time { return s.ShownAt }

func (Skipped) sealed() {}

// DefaultWindow is how far back the engine looks by default.
const DefaultWindow = 7 * 24 * time.Hour

// Recent merges the append-only log and the rollup store into the ordered
// recent-history view, newest first. Records present in both (a log not yet
// rolled up) are deduplicated by id, log copy winning. Diagnostics from
// corrupt log lines are passed through.
func Recent(log *wal.Log, s *store.Store, now time.Time, window time.Duration) ([]Entry, []string, error) {
	cutoff := now.Add(-window)

	walRecords, diags, err := log.Read()
	if err != nil {
		return nil, diags, err
	}

	seen := make(map[uuid.UUID]bool, len(walRecords))
	var entries []Entry
	for _, rec := range walRecords {
		if rec.PerformedAt.Before(cutoff) {
			continue
		}
		seen[rec.ID] = true
		entries = append(entries, Real{Record: rec})
	}

	archived, err := s.ListSessionsSince(cutoff, 0)
	if err != nil {
		return nil, diags, err
	}
	for _, rec := range archived {
		if seen[rec.ID] {
			continue
		}
		entries = append(entries, Real{Record: rec})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt().After(entries[j].OccurredAt())
	})
	return entries, diags, nil
}

// Categorize resolves an entry's definition id to its category, first through
// the catalog, then by id naming conventions for ids the catalog no longer
// knows.
func Categorize(c *catalog.Catalog, defID string) (catalog.Category, bool) {
	if def, ok := c.Definitions[defID]; ok {
		return def.Category, true
	}
	switch {
	case strings.Contains(defID, "vo2"), strings.Contains(defID, "emom"):
		return catalog.CategoryVo2, true
	case strings.Contains(defID, "gtg"):
		return catalog.CategoryGtg, true
	case strings.Contains(defID, "mobility"):
		return catalog.CategoryMobility, true
	}
	return "", false
}

// LastByCategory finds the most recent entry in the given category. Entries
// must already be ordered newest first.
func LastByCategory(entries []Entry, c *catalog.Catalog, want catalog.Category) (Entry, bool) {
	for _, e := range entries {
		if cat, ok := Categorize(c, e.DefinitionID()); ok && cat == want {
			return e, true
		}
	}
	return nil, false
}
