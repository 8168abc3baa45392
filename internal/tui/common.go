package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/worklog/internal/leaderboard"
	"github.com/sadopc/worklog/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTracker viewState = iota
	viewCategories
	viewHistory
	viewLeaderboard
	viewSettings
)

var viewNames = []string{"Tracker", "Categories", "History", "Leaderboard", "Settings"}

// --- Messages ---

type sessionStartedMsg struct {
	session *store.Session
}

type sessionStoppedMsg struct {
	session *store.Session
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type categoriesDataMsg struct {
	categories []store.Category
}

type tasksDataMsg struct {
	tasks []store.Task
}

type historyDataMsg struct {
	days     []dayTotal
	sessions []store.Session
}

type boardDataMsg struct {
	rows []leaderboard.Row
}

type syncDoneMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatMinutes(mins float64) string {
	return formatDuration(time.Duration(mins * float64(time.Minute)))
}
