package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/krep/internal/session"
)

type jsonExport struct {
	ExportedAt string           `json:"exported_at"`
	Count      int              `json:"count"`
	Sessions   []session.Record `json:"sessions"`
}

// ToJSON writes archived sessions to a pretty-printed JSON file.
func ToJSON(records []session.Record, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
		Sessions:   records,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
