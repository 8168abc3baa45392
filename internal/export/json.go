package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/worklog/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	CategoryID  int64  `json:"category_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Notes       string `json:"notes,omitempty"`
}

func ToJSON(sessions []store.Session, categories map[int64]*store.Category, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		categoryName := "Unknown"
		if c, ok := categories[s.CategoryID]; ok {
			categoryName = c.Name
		}
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Category:    categoryName,
			CategoryID:  s.CategoryID,
			StartTime:   s.StartTime.Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
			Notes:       s.Notes,
		})
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
