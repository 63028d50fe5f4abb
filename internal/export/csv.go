package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/krep/internal/session"
)

// ToCSV writes archived sessions to a CSV file, one row per session.
func ToCSV(records []session.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Definition", "Performed At", "Started At", "Completed At", "Duration (s)", "RPE", "Avg HR", "Max HR"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.DefinitionID,
			r.PerformedAt.UTC().Format(time.RFC3339),
			formatTimePtr(r.StartedAt),
			formatTimePtr(r.CompletedAt),
			formatIntPtr(r.DurationSeconds),
			formatIntPtr(r.PerceivedEffort),
			formatIntPtr(r.AvgHeartRate),
			formatIntPtr(r.MaxHeartRate),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}
