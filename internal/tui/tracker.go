package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/worklog/internal/stats"
	"github.com/sadopc/worklog/internal/store"
)

type trackerModel struct {
	store     *store.Store
	stopwatch stopwatchModel
	width     int
	height    int

	today      stats.Daily
	recent     []store.Session
	categories []store.Category

	// Category picker state
	picking      bool
	pickerCursor int
}

func newTrackerModel(s *store.Store) trackerModel {
	sw := newStopwatchModel(s)
	sw.restore()
	return trackerModel{
		store:     s,
		stopwatch: sw,
	}
}

func (m trackerModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *trackerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m trackerModel) isRunning() bool { return m.stopwatch.running }
func (m trackerModel) elapsed() time.Duration {
	return m.stopwatch.elapsed()
}

type trackerDataMsg struct {
	today      stats.Daily
	recent     []store.Session
	categories []store.Category
}

func (m trackerModel) loadData() tea.Cmd {
	return func() tea.Msg {
		var today stats.Daily
		if from, to, err := stats.DayRange(stats.Today(time.Now())); err == nil {
			sessions, _ := m.store.QuerySessions(from, to)
			today = stats.Aggregate(sessions)
		}

		recent, _ := m.store.ListSessions(store.SessionFilter{Limit: 5})
		categories, _ := m.store.ListCategories()

		return trackerDataMsg{
			today:      today,
			recent:     recent,
			categories: categories,
		}
	}
}

func (m trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trackerDataMsg:
		m.today = msg.today
		m.recent = msg.recent
		m.categories = msg.categories
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if m.stopwatch.running {
				return m, nil
			}
			if len(m.categories) == 0 {
				return m, func() tea.Msg {
					return statusMsg{text: "No categories yet. Press 2 to go to Categories and create one.", isError: true}
				}
			}
			if len(m.categories) == 1 {
				return m.startSession(m.categories[0])
			}
			m.picking = true
			m.pickerCursor = m.lastCategoryIndex()
			return m, nil

		case key.Matches(msg, keys.Stop):
			return m.stopSession()
		}
	}
	return m, nil
}

func (m trackerModel) updatePicker(msg tea.KeyMsg) (trackerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < len(m.categories)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.picking = false
		return m.startSession(m.categories[m.pickerCursor])
	case key.Matches(msg, keys.Back):
		m.picking = false
	}
	return m, nil
}

func (m trackerModel) startSession(c store.Category) (trackerModel, tea.Cmd) {
	if err := m.stopwatch.start(c.ID, c.Name, nil); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Start error: %v", err), isError: true}
		}
	}
	m.store.SetSetting(store.SettingLastCategory, c.Name)
	return m, func() tea.Msg {
		return sessionStartedMsg{}
	}
}

func (m trackerModel) stopSession() (trackerModel, tea.Cmd) {
	session, err := m.stopwatch.stop()
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Stop error: %v", err), isError: true}
		}
	}
	if session == nil {
		return m, nil
	}
	cmds := []tea.Cmd{m.loadData(), func() tea.Msg {
		return sessionStoppedMsg{session: session}
	}}
	return m, tea.Batch(cmds...)
}

func (m trackerModel) lastCategoryIndex() int {
	name, err := m.store.GetSetting(store.SettingLastCategory)
	if err != nil {
		return 0
	}
	for i, c := range m.categories {
		if c.Name == name {
			return i
		}
	}
	return 0
}

func (m trackerModel) view() string {
	w := m.width - 4

	if m.picking {
		return m.renderPicker(w)
	}

	// Stopwatch panel
	clock := formatDuration(m.stopwatch.elapsed())
	var swLine string
	if m.stopwatch.running {
		swLine = stopwatchRunningStyle.Render(clock) + "\n" +
			mutedStyle.Render(fmt.Sprintf("tracking %s since %s", m.stopwatch.categoryName, m.stopwatch.startTime.Local().Format("15:04")))
	} else {
		swLine = stopwatchStyle.Render(clock) + "\n" +
			mutedStyle.Render("press s to start a session")
	}
	swPanel := activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, swLine))

	// Today panel
	todayLine := fmt.Sprintf("Today: %d sessions  •  %s total  •  %s longest",
		m.today.SessionCount,
		formatMinutes(m.today.TotalMinutes),
		formatMinutes(m.today.LongestMinutes),
	)
	todayPanel := panelStyle.Width(w).Render(titleStyle.Render("Today") + "\n" + todayLine)

	// Recent sessions
	var rows []string
	rows = append(rows, titleStyle.Render("Recent Sessions"))
	if len(m.recent) == 0 {
		rows = append(rows, mutedStyle.Render("No sessions yet."))
	}
	for _, s := range m.recent {
		name := m.categoryName(s.CategoryID)
		rows = append(rows, fmt.Sprintf("  %s  %-16s %s",
			s.StartTime.Local().Format("Jan 02 15:04"), name, formatSeconds(s.Duration)))
	}
	recentPanel := panelStyle.Width(w).Render(strings.Join(rows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, swPanel, todayPanel, recentPanel)
}

func (m trackerModel) renderPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Pick a Category"))
	rows = append(rows, "")
	for i, c := range m.categories {
		cursor := "  "
		style := normalItemStyle
		if i == m.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+c.Name))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m trackerModel) categoryName(id int64) string {
	for _, c := range m.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}
