package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/catalog"
	"github.com/sadopc/krep/internal/session"
)

// InsertSession inserts a session row, ignoring records whose id is already
// present. Returns true when a new row was written.
func (s *Store) InsertSession(rec session.Record) (bool, error) {
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return false, fmt.Errorf("marshal metrics: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions
		 (id, definition_id, performed_at, started_at, completed_at, duration_seconds, metrics, perceived_effort, avg_heart_rate, max_heart_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.DefinitionID,
		rec.PerformedAt.UTC().Format(time.RFC3339),
		timePtrString(rec.StartedAt),
		timePtrString(rec.CompletedAt),
		rec.DurationSeconds,
		string(metrics),
		rec.PerceivedEffort,
		rec.AvgHeartRate,
		rec.MaxHeartRate,
	)
	if err != nil {
		return false, fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetSession fetches one session by id.
func (s *Store) GetSession(id uuid.UUID) (*session.Record, error) {
	row := s.db.QueryRow(
		`SELECT id, definition_id, performed_at, started_at, completed_at, duration_seconds, metrics, perceived_effort, avg_heart_rate, max_heart_rate
		 FROM sessions WHERE id = ?`, id.String(),
	)
	rec, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return rec, nil
}

// ListSessionsSince returns sessions performed at or after the cutoff,
// newest first. A non-positive limit means no limit.
func (s *Store) ListSessionsSince(cutoff time.Time, limit int) ([]session.Record, error) {
	query := `SELECT id, definition_id, performed_at, started_at, completed_at, duration_seconds, metrics, perceived_effort, avg_heart_rate, max_heart_rate
		 FROM sessions WHERE performed_at >= ? ORDER BY performed_at DESC`
	args := []any{cutoff.UTC().Format(time.RFC3339)}
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []session.Record
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountSessions returns the total number of archived sessions.
func (s *Store) CountSessions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.Record, error) {
	var (
		rec         session.Record
		id          string
		performedAt string
		startedAt   sql.NullString
		completedAt sql.NullString
		duration    sql.NullInt64
		metrics     string
		effort      sql.NullInt64
		avgHR       sql.NullInt64
		maxHR       sql.NullInt64
	)
	err := row.Scan(&id, &rec.DefinitionID, &performedAt, &startedAt, &completedAt, &duration, &metrics, &effort, &avgHR, &maxHR)
	if err != nil {
		return nil, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session id %q: %w", id, err)
	}
	rec.PerformedAt, err = time.Parse(time.RFC3339, performedAt)
	if err != nil {
		return nil, fmt.Errorf("parse performed_at %q: %w", performedAt, err)
	}
	rec.StartedAt = parseTimePtr(startedAt)
	rec.CompletedAt = parseTimePtr(completedAt)
	rec.DurationSeconds = intPtr(duration)
	rec.PerceivedEffort = intPtr(effort)
	rec.AvgHeartRate = intPtr(avgHR)
	rec.MaxHeartRate = intPtr(maxHR)

	if metrics != "" {
		if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("parse metrics for session %s: %w", id, err)
		}
	}
	if rec.Metrics == nil {
		rec.Metrics = []catalog.MetricSpec{}
	}
	return &rec, nil
}

func timePtrString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
