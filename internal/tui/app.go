package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/worklog/internal/export"
	"github.com/sadopc/worklog/internal/leaderboard"
	"github.com/sadopc/worklog/internal/stats"
	"github.com/sadopc/worklog/internal/store"
	"github.com/sadopc/worklog/internal/syncer"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	sync   *syncer.Syncer // nil when cloud sync is not configured
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tracker    trackerModel
	categories categoriesModel
	history    historyModel
	board      boardModel
	settings   settingsModel

	help   help.Model
	status string
}

// NewApp wires the views together. sync and engine may be nil when cloud
// sync is not configured; the corresponding features render as disabled.
func NewApp(s *store.Store, sync *syncer.Syncer, engine *leaderboard.Engine, userID, syncInterval string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		sync:       sync,
		activeView: viewTracker,
		tracker:    newTrackerModel(s),
		categories: newCategoriesModel(s),
		history:    newHistoryModel(s),
		board:      newBoardModel(engine, userID),
		settings:   newSettingsModel(s, engine != nil, syncInterval),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.tracker.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tracker.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.board.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker overlay
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Sync):
			return a, a.syncNowCmd()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTracker
			return a, a.tracker.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCategories
			return a, a.categories.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewLeaderboard
			return a, a.board.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		// Ticks keep the stopwatch rendering fresh regardless of view
		var cmd tea.Cmd
		a.tracker, cmd = a.tracker.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case sessionStartedMsg:
		a.status = "Session started"
		return a, nil

	case sessionStoppedMsg:
		a.status = "Session stopped"
		// Push the closed session's day bucket right away rather than
		// waiting for the next periodic cycle.
		var cmds []tea.Cmd
		if a.sync != nil && msg.session != nil {
			date := stats.StatDate(msg.session.StartTime)
			cmds = append(cmds, a.syncDateCmd(date))
		}
		// Route to views that show session data
		var cmd tea.Cmd
		a.tracker, cmd = a.tracker.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case syncDoneMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Sync failed: %v", msg.err)
		} else {
			a.status = "Synced"
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTracker:
		a.tracker, cmd = a.tracker.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewLeaderboard:
		a.board, cmd = a.board.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCategories:
		return a.categories.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTracker:
		return a.tracker.loadData()
	case viewCategories:
		return a.categories.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewLeaderboard:
		return a.board.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) syncNowCmd() tea.Cmd {
	if a.sync == nil {
		return func() tea.Msg {
			return statusMsg{text: "Cloud sync is not configured", isError: true}
		}
	}
	sync := a.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return syncDoneMsg{err: sync.SyncToday(ctx)}
	}
}

func (a App) syncDateCmd(date string) tea.Cmd {
	sync := a.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return syncDoneMsg{err: sync.SyncDate(ctx, date)}
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTracker:
		content = a.tracker.view()
	case viewCategories:
		content = a.categories.view()
	case viewHistory:
		content = a.history.view()
	case viewLeaderboard:
		content = a.board.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("worklog")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Running-session indicator stays visible on every view
	timerInfo := ""
	if a.tracker.isRunning() {
		timerInfo = successStyle.Render(" ● " + formatDuration(a.tracker.elapsed()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(store.SessionFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		categories := make(map[int64]*store.Category)
		clist, _ := a.store.ListCategories()
		for i := range clist {
			categories[clist[i].ID] = &clist[i]
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("worklog-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, categories, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("worklog-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, categories, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
