// Package session holds the record types shared by the persistence layers,
// the history provider and the prescription engine.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/catalog"
)

// Record is one completed, real microdose session. Created once, appended
// once to the log, immutable thereafter.
type Record struct {
	ID              uuid.UUID            `json:"id"`
	DefinitionID    string               `json:"definition_id"`
	PerformedAt     time.Time            `json:"performed_at"`
	StartedAt       *time.Time           `json:"started_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	DurationSeconds *int                 `json:"actual_duration_seconds,omitempty"`
	Metrics         []catalog.MetricSpec `json:"realized_metrics"`
	PerceivedEffort *int                 `json:"perceived_effort,omitempty"`
	AvgHeartRate    *int                 `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    *int                 `json:"max_heart_rate,omitempty"`
}

// StrengthSessionType classifies an external strength training session.
// Values outside the three known kinds carry the external system's label
// verbatim (the "other" case).
type StrengthSessionType string

const (
	StrengthLower StrengthSessionType = "lower"
	StrengthUpper StrengthSessionType = "upper"
	StrengthFull  StrengthSessionType = "full"
)

// ParseStrengthSessionType maps free-form session type strings from the
// external system onto StrengthSessionType. Unrecognized values are kept
// as-is rather than rejected.
func ParseStrengthSessionType(s string) StrengthSessionType {
	switch t := strings.ToLower(s); t {
	case "lower":
		return StrengthLower
	case "upper":
		return StrengthUpper
	case "full", "full_body", "fullbody":
		return StrengthFull
	default:
		return StrengthSessionType(t)
	}
}

// StrengthSignal is the external strength training signal supplied by the
// caller. The core never performs I/O to obtain it.
type StrengthSignal struct {
	LastSessionAt time.Time           `json:"last_session_at"`
	SessionType   StrengthSessionType `json:"session_type"`
}
