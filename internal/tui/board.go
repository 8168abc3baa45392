package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/worklog/internal/leaderboard"
)

var (
	boardFilters = []leaderboard.DateFilter{
		leaderboard.FilterToday,
		leaderboard.FilterYesterday,
		leaderboard.FilterAllTime,
	}
	boardSorts = []leaderboard.SortKey{
		leaderboard.SortTotalDuration,
		leaderboard.SortLongestSession,
	}
)

var filterLabels = map[leaderboard.DateFilter]string{
	leaderboard.FilterToday:     "Today",
	leaderboard.FilterYesterday: "Yesterday",
	leaderboard.FilterAllTime:   "All Time",
}

var sortLabels = map[leaderboard.SortKey]string{
	leaderboard.SortTotalDuration:  "Total Duration",
	leaderboard.SortLongestSession: "Longest Session",
}

type boardModel struct {
	engine *leaderboard.Engine
	userID string
	width  int
	height int

	filterIdx int
	sortIdx   int
	rows      []leaderboard.Row
	loaded    bool
}

func newBoardModel(engine *leaderboard.Engine, userID string) boardModel {
	return boardModel{engine: engine, userID: userID}
}

func (m *boardModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m boardModel) enabled() bool { return m.engine != nil }

func (m boardModel) refresh() tea.Cmd {
	if !m.enabled() {
		return nil
	}
	filter := boardFilters[m.filterIdx]
	sort := boardSorts[m.sortIdx]
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return boardDataMsg{rows: engine.Query(ctx, filter, sort)}
	}
}

func (m boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardDataMsg:
		m.rows = msg.rows
		m.loaded = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Filter):
			m.filterIdx = (m.filterIdx + 1) % len(boardFilters)
			return m, m.refresh()
		case key.Matches(msg, keys.Sort):
			m.sortIdx = (m.sortIdx + 1) % len(boardSorts)
			return m, m.refresh()
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m boardModel) view() string {
	w := m.width - 4

	if !m.enabled() {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Leaderboard"),
			"",
			mutedStyle.Render("Cloud sync is not configured."),
			mutedStyle.Render("Set cloud_dsn in the config file (see Settings) to join the board."),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Leaderboard"), "  ",
		highlightStyle.Render(filterLabels[boardFilters[m.filterIdx]]), "  ",
		mutedStyle.Render("by "+sortLabels[boardSorts[m.sortIdx]]),
	)

	var body string
	switch {
	case !m.loaded:
		body = mutedStyle.Render("  Loading...")
	case len(m.rows) == 0:
		body = mutedStyle.Render("  No entries for this period yet.")
	default:
		body = m.renderRows(w)
	}

	nav := mutedStyle.Render("  f: filter  o: sort  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (m boardModel) renderRows(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %4s  %-24s %9s %10s %10s", "#", "Name", "Sessions", "Total", "Longest")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))

	for i, r := range m.rows {
		dot := mutedStyle.Render("·")
		if r.Online {
			dot = successStyle.Render("●")
		}
		name := r.DisplayName
		style := normalItemStyle
		if r.UserID == m.userID {
			name += " (you)"
			style = highlightStyle
		}
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		rows = append(rows, fmt.Sprintf("  %4d %s %s %9d %10s %10s",
			i+1, dot, style.Render(fmt.Sprintf("%-24s", name)),
			r.SessionCount,
			formatMinutes(r.TotalMinutes),
			formatMinutes(r.LongestMinutes),
		))
	}

	return strings.Join(rows, "\n")
}
