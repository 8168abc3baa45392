package tui

import (
	"time"

	"github.com/sadopc/worklog/internal/store"
)

// stopwatchModel manages the running-session logic separate from display.
// The store enforces the single-open-session rule; this model mirrors it
// for rendering.
type stopwatchModel struct {
	store *store.Store

	running      bool
	startTime    time.Time
	sessionID    int64
	categoryID   int64
	categoryName string
	taskID       *int64
}

func newStopwatchModel(s *store.Store) stopwatchModel {
	return stopwatchModel{store: s}
}

// restore adopts a session left open by a previous run, so a crash or
// restart does not lose a running stopwatch.
func (m *stopwatchModel) restore() {
	open, err := m.store.OpenSession()
	if err != nil || open == nil {
		return
	}
	m.running = true
	m.startTime = open.StartTime
	m.sessionID = open.ID
	m.categoryID = open.CategoryID
	m.taskID = open.TaskID
	if c, err := m.store.GetCategory(open.CategoryID); err == nil {
		m.categoryName = c.Name
	}
}

func (m *stopwatchModel) start(categoryID int64, categoryName string, taskID *int64) error {
	session, err := m.store.StartSession(categoryID, taskID, time.Now())
	if err != nil {
		return err
	}
	m.running = true
	m.startTime = session.StartTime
	m.sessionID = session.ID
	m.categoryID = categoryID
	m.categoryName = categoryName
	m.taskID = taskID
	return nil
}

func (m *stopwatchModel) stop() (*store.Session, error) {
	if !m.running {
		return nil, nil
	}
	session, err := m.store.StopSession(time.Now())
	if err != nil {
		return nil, err
	}
	m.running = false
	return session, nil
}

func (m stopwatchModel) elapsed() time.Duration {
	if !m.running {
		return 0
	}
	return time.Since(m.startTime)
}
