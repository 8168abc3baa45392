package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/worklog/internal/store"
)

type settingsModel struct {
	store        *store.Store
	cloudReady   bool
	syncInterval string
	width        int
	height       int

	userID      string
	displayName string

	formActive bool
	form       *huh.Form

	// Form value as pointer (survives value copies)
	nameField *string
}

func newSettingsModel(s *store.Store, cloudReady bool, syncInterval string) settingsModel {
	name := ""
	return settingsModel{
		store:        s,
		cloudReady:   cloudReady,
		syncInterval: syncInterval,
		nameField:    &name,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	userID      string
	displayName string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		id, _ := s.store.EnsureUserID()
		name, _ := s.store.DisplayName()
		return settingsDataMsg{userID: id, displayName: name}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.userID = msg.userID
		s.displayName = msg.displayName
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Rename):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.nameField = s.displayName

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Display name").
				Description("Shown to other users on the leaderboard.").
				Value(s.nameField),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		name := strings.TrimSpace(*s.nameField)
		if name != "" {
			s.store.SetSetting(store.SettingDisplayName, name)
		}
		// The next sync cycle pushes the new name to every owned row.
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	cloudStatus := errorStyle.Render("not configured")
	syncLine := mutedStyle.Render("set cloud_dsn in the config file to enable sync")
	if s.cloudReady {
		cloudStatus = successStyle.Render("connected")
		syncLine = fmt.Sprintf("every %s  %s", s.syncInterval, mutedStyle.Render("(u: sync now)"))
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), value)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Settings"),
		"",
		row("Display name", highlightStyle.Render(s.displayName)),
		row("User ID", mutedStyle.Render(s.userID)),
		"",
		row("Cloud sync", cloudStatus),
		row("Sync", syncLine),
		"",
		mutedStyle.Render("Press enter to edit the display name"),
	)

	return panelStyle.Width(w).Render(content)
}
