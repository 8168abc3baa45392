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

type categoriesModel struct {
	store  *store.Store
	width  int
	height int

	categories []store.Category
	tasks      []store.Task
	cursor     int
	taskCursor int

	viewingTasks bool // true = viewing the task list

	formActive bool
	form       *huh.Form
	formType   string // "category", "rename_category", "task"

	// Form field pointer (survives value copies)
	formName *string

	editingID int64 // category ID being renamed
}

func newCategoriesModel(s *store.Store) categoriesModel {
	name := ""
	return categoriesModel{
		store:    s,
		formName: &name,
	}
}

func (m *categoriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m categoriesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		categories, _ := m.store.ListCategories()
		return categoriesDataMsg{categories: categories}
	}
}

func (m categoriesModel) refreshTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := m.store.ListTasks(false)
		return tasksDataMsg{tasks: tasks}
	}
}

func (m categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case categoriesDataMsg:
		m.categories = msg.categories
		if m.cursor >= len(m.categories) {
			m.cursor = max(0, len(m.categories)-1)
		}
		return m, nil

	case tasksDataMsg:
		m.tasks = msg.tasks
		if m.taskCursor >= len(m.tasks) {
			m.taskCursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewingTasks {
			return m.updateTaskView(msg)
		}
		return m.updateCategoryList(msg)
	}
	return m, nil
}

func (m categoriesModel) updateCategoryList(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.viewingTasks = true
		m.taskCursor = 0
		return m, m.refreshTasks()
	case key.Matches(msg, keys.New):
		return m.showCategoryForm("category", "")
	case key.Matches(msg, keys.Rename):
		if len(m.categories) > 0 {
			c := m.categories[m.cursor]
			m.editingID = c.ID
			return m.showCategoryForm("rename_category", c.Name)
		}
	case key.Matches(msg, keys.Delete):
		if len(m.categories) > 0 {
			c := m.categories[m.cursor]
			if err := m.store.DeleteCategory(c.ID); err != nil {
				return m, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
				}
			}
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m categoriesModel) updateTaskView(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingTasks = false
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.taskCursor < len(m.tasks)-1 {
			m.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showCategoryForm("task", "")
	case key.Matches(msg, keys.Star):
		if len(m.tasks) > 0 {
			m.store.ToggleTaskStarred(m.tasks[m.taskCursor].ID)
			return m, m.refreshTasks()
		}
	case key.Matches(msg, keys.Done):
		if len(m.tasks) > 0 {
			t := m.tasks[m.taskCursor]
			status := store.TaskCompleted
			if t.Status == store.TaskCompleted {
				status = store.TaskPending
			}
			m.store.SetTaskStatus(t.ID, status)
			return m, m.refreshTasks()
		}
	case key.Matches(msg, keys.Delete):
		if len(m.tasks) > 0 {
			m.store.DeleteTask(m.tasks[m.taskCursor].ID)
			return m, m.refreshTasks()
		}
	}
	return m, nil
}

func (m categoriesModel) showCategoryForm(formType, initial string) (categoriesModel, tea.Cmd) {
	*m.formName = initial
	m.formType = formType

	title := "Category Name"
	if formType == "task" {
		title = "Task Title"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		name := strings.TrimSpace(*m.formName)
		switch m.formType {
		case "category":
			if name != "" {
				if _, err := m.store.CreateCategory(name); err != nil {
					return m, tea.Batch(m.refresh(), func() tea.Msg {
						return statusMsg{text: fmt.Sprintf("Category %q already exists", name), isError: true}
					})
				}
			}
			return m, m.refresh()
		case "rename_category":
			if name != "" {
				m.store.RenameCategory(m.editingID, name)
			}
			return m, m.refresh()
		case "task":
			if name != "" {
				m.store.CreateTask(name, nil)
			}
			return m, m.refreshTasks()
		}
	}

	return m, cmd
}

func (m categoriesModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Category")
		switch m.formType {
		case "rename_category":
			title = titleStyle.Render("Rename Category")
		case "task":
			title = titleStyle.Render("New Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	if m.viewingTasks {
		return m.renderTaskList()
	}
	return m.renderCategoryList()
}

func (m categoriesModel) renderCategoryList() string {
	w := m.width - 4
	title := titleStyle.Render("Categories")

	if len(m.categories) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No categories yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, c := range m.categories {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+c.Name))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: rename  d: delete  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m categoriesModel) renderTaskList() string {
	w := m.width - 4
	title := titleStyle.Render("Tasks")

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, t := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		star := "  "
		if t.Starred {
			star = warningStyle.Render("★ ")
		}
		mark := "[ ]"
		if t.Status == store.TaskCompleted {
			mark = successStyle.Render("[✓]")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s%s", cursor, mark, star, style.Render(t.Title)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  c: complete  *: star  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
