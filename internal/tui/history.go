package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/worklog/internal/stats"
	"github.com/sadopc/worklog/internal/store"
)

const historyDays = 7

// dayTotal is one stat-date bucket of local sessions for the chart.
type dayTotal struct {
	date    string // stat date, YYYY-MM-DD
	label   string // short chart label, e.g. "Mon 02"
	summary stats.Daily
}

type historyModel struct {
	store  *store.Store
	width  int
	height int

	days     []dayTotal
	sessions []store.Session
	offset   int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m historyModel) refresh() tea.Cmd {
	offset := m.offset
	return func() tea.Msg {
		now := time.Now()

		days := make([]dayTotal, 0, historyDays)
		for i := historyDays*(offset+1) - 1; i >= historyDays*offset; i-- {
			date := stats.DaysAgo(now, i)
			from, to, err := stats.DayRange(date)
			if err != nil {
				continue
			}
			sessions, _ := m.store.QuerySessions(from, to)
			days = append(days, dayTotal{
				date:    date,
				label:   stats.DayLabel(date),
				summary: stats.Aggregate(sessions),
			})
		}

		// Session list spanning the visible block
		var sessions []store.Session
		if len(days) > 0 {
			from, _, err1 := stats.DayRange(days[0].date)
			_, to, err2 := stats.DayRange(days[len(days)-1].date)
			if err1 == nil && err2 == nil {
				sessions, _ = m.store.QuerySessions(from, to)
			}
		}

		return historyDataMsg{days: days, sessions: sessions}
	}
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		m.days = msg.days
		m.sessions = msg.sessions
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m *historyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range m.days {
		hours := d.summary.TotalMinutes / 60.0
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.summary.Empty() {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.label,
			Values: []barchart.BarValue{
				{Name: d.date, Value: hours, Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m historyModel) view() string {
	w := m.width - 4

	var dateLabel string
	if len(m.days) > 0 {
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s — %s", m.days[0].date, m.days[len(m.days)-1].date))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", dateLabel,
	)

	chartView := m.chart.View()
	tableView := m.renderDayTable(w)
	sessionsView := m.renderSessions()
	nav := mutedStyle.Render("  ←/→: navigate weeks  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", sessionsView, "", nav,
		),
	)
}

func (m historyModel) renderDayTable(w int) string {
	if len(m.days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %10s", "Date", "Sessions", "Total", "Longest")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	for _, d := range m.days {
		if d.summary.Empty() {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %10s", d.date, "-", "-", "-")))
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10s %10s",
			d.date, d.summary.SessionCount,
			formatMinutes(d.summary.TotalMinutes),
			formatMinutes(d.summary.LongestMinutes),
		))
	}

	return strings.Join(rows, "\n")
}

func (m historyModel) renderSessions() string {
	if len(m.sessions) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Sessions"))

	shown := m.sessions
	if len(shown) > 10 {
		shown = shown[len(shown)-10:]
	}
	for _, s := range shown {
		notes := s.Notes
		if len(notes) > 24 {
			notes = notes[:21] + "..."
		}
		rows = append(rows, fmt.Sprintf("  %s  %8s  %s",
			s.StartTime.Local().Format("Jan 02 15:04"), formatSeconds(s.Duration), mutedStyle.Render(notes)))
	}

	return strings.Join(rows, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
