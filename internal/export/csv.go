package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/worklog/internal/store"
)

func ToCSV(sessions []store.Session, categories map[int64]*store.Category, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Category", "Start", "End", "Duration (s)", "Duration", "Notes"}); err != nil {
		return err
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
		dur := formatDuration(s.Duration)

		row := []string{
			fmt.Sprintf("%d", s.ID),
			categoryName,
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", s.Duration),
			dur,
			s.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
