package wal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/session"
)

func testRecord(defID string) session.Record {
	now := time.Now().UTC()
	dur := 300
	rpe := 7
	return session.Record{
		ID:              uuid.New(),
		DefinitionID:    defID,
		PerformedAt:     now,
		StartedAt:       &now,
		CompletedAt:     &now,
		DurationSeconds: &dur,
		PerceivedEffort: &rpe,
	}
}

func TestAppendAndReadSingle(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "sessions.wal"))

	rec := testRecord("emom_kb_swing_5m")
	if err := log.Append(rec); err != nil {
		t.Fatal(err)
	}

	records, diags, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != rec.ID {
		t.Fatal("record id mismatch after round trip")
	}
	if records[0].DefinitionID != "emom_kb_swing_5m" {
		t.Fatalf("unexpected definition id %q", records[0].DefinitionID)
	}
}

func TestAppendMultiple(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "sessions.wal"))

	for i := 0; i < 5; i++ {
		if err := log.Append(testRecord("emom_burpee_5m")); err != nil {
			t.Fatal(err)
		}
	}

	records, _, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
}

func TestReadMissingLog(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "nonexistent.wal"))

	records, diags, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if records != nil || diags != nil {
		t.Fatal("missing log should be an empty result")
	}
}

// A corrupted line must not abort the lines around it.
func TestReadSkipsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.wal")
	log := NewLog(path)

	if err := log.Append(testRecord("a")); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{ this is not json\n")
	f.Close()
	if err := log.Append(testRecord("b")); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(testRecord("c")); err != nil {
		t.Fatal(err)
	}

	records, diags, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 well-formed records, got %d", len(records))
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for the bad line, got %v", diags)
	}
}

func TestReadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.wal")
	log := NewLog(path)

	log.Append(testRecord("a"))
	f, _ := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	f.WriteString("\n\n")
	f.Close()
	log.Append(testRecord("b"))

	records, diags, err := log.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || len(diags) != 0 {
		t.Fatalf("blank lines should be ignored silently, got %d records %v", len(records), diags)
	}
}

func TestAppendCreatesParentDir(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "nested", "dir", "sessions.wal"))
	if err := log.Append(testRecord("a")); err != nil {
		t.Fatal(err)
	}
}
