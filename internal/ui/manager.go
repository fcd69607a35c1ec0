package ui

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
)

const msgManagerFetchFailed = "Failed to fetch tasks."

type managerFocus int

const (
	focusForm managerFocus = iota
	focusList
)

// Manager owns the canonical task collection. Children report confirmed
// results and the manager applies them by task ID. Like every widget here it
// is a value; an update never writes through to an older copy.
type Manager struct {
	id       WidgetID
	api      taskapi.API
	form     Form
	items    []Item
	cursor   int
	focus    managerFocus
	loading  bool
	fetchGen int
	err      string
}

func NewManager(api taskapi.API) Manager {
	return Manager{
		id:   newWidgetID(),
		api:  api,
		form: NewForm(api, TitleOnly()),
	}
}

func (m Manager) ID() WidgetID { return m.id }
func (m Manager) Form() Form { return m.form }
func (m Manager) Loading() bool { return m.loading }
func (m Manager) Err() string { return m.err }
func (m Manager) Cursor() int { return m.cursor }

// Tasks returns the confirmed collection in display order.
func (m Manager) Tasks() []task.Task {
	tasks := make([]task.Task, len(m.items))
	for i, it := range m.items {
		tasks[i] = it.Task()
	}
	return tasks
}

// Item returns the row widget at index i.
func (m Manager) Item(i int) Item {
	return m.items[i]
}

// Mount issues the initial fetch.
func (m Manager) Mount() (Manager, tea.Cmd) {
	return m.Refresh()
}

// Refresh reloads the collection. Rows stay visible until the result lands.
func (m Manager) Refresh() (Manager, tea.Cmd) {
	m.fetchGen++
	m.loading = true
	m.err = ""
	return m, fetchCmd(m.api, m.id, m.fetchGen)
}

// SetForm replaces the embedded form, for tests and callers that prefill it.
func (m Manager) SetForm(f Form) Manager {
	m.form = f
	return m
}

func (m Manager) Update(msg tea.Msg) (Manager, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchResultMsg:
		if msg.owner != m.id || msg.gen != m.fetchGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			slog.Warn("failed to fetch tasks", "error", msg.err)
			m.err = msgManagerFetchFailed
			return m, nil
		}
		m.items = m.reconcile(msg.tasks)
		m.cursor = clamp(m.cursor, len(m.items))
		return m, nil

	case createResultMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case TaskAddedMsg:
		if msg.Form != m.form.ID() {
			return m, nil
		}
		m.items = append(slices.Clip(m.items), m.newItem(msg.Task))
		return m, nil

	case updateResultMsg:
		for i := range m.items {
			if m.items[i].ID() == msg.item {
				var cmd tea.Cmd
				m.items = slices.Clone(m.items)
				m.items[i], cmd = m.items[i].Update(msg)
				return m, cmd
			}
		}
		return m, nil

	case TaskUpdatedMsg:
		i := m.indexOf(msg.Task.ID)
		if i < 0 {
			slog.Debug("ignoring update for a task no longer listed", "task_id", msg.Task.ID)
			return m, nil
		}
		m.items = slices.Clone(m.items)
		m.items[i] = m.items[i].SetTask(msg.Task)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Manager) handleKey(msg tea.KeyMsg) (Manager, tea.Cmd) {
	if msg.String() == "tab" {
		if m.focus == focusForm {
			m.focus = focusList
			m.form = m.form.Blur()
		} else {
			m.focus = focusForm
			m.form = m.form.Focus()
		}
		return m, nil
	}

	if m.focus == focusForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ", "enter":
		return m.ToggleAt(m.cursor)
	case "r":
		if !m.loading {
			return m.Refresh()
		}
	}
	return m, nil
}

// ToggleAt toggles the row at index i.
func (m Manager) ToggleAt(i int) (Manager, tea.Cmd) {
	if i < 0 || i >= len(m.items) {
		return m, nil
	}
	var cmd tea.Cmd
	m.items = slices.Clone(m.items)
	m.items[i], cmd = m.items[i].Toggle()
	return m, cmd
}

func (m Manager) updateStatus(ctx context.Context, id int64, completed bool) (task.Task, error) {
	return m.api.UpdateTask(ctx, id, task.CompletedPatch(completed))
}

func (m Manager) newItem(t task.Task) Item {
	return NewItem(t, m.updateStatus)
}

// reconcile keeps the row widget of every task that is still present so that
// in-flight toggles land on the same row.
func (m Manager) reconcile(tasks []task.Task) []Item {
	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		if i := m.indexOf(t.ID); i >= 0 {
			items = append(items, m.items[i].SetTask(t))
			continue
		}
		items = append(items, m.newItem(t))
	}
	return items
}

func (m Manager) indexOf(id int64) int {
	return slices.IndexFunc(m.items, func(it Item) bool { return it.Task().ID == id })
}

func (m Manager) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Manager"))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString(mutedStyle.Render("Loading tasks..."))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(mutedStyle.Render("Refreshing..."))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		b.WriteString(it.View(m.focus == focusList && i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab focus form/list • ↑/↓ move • space toggle • r refresh"))
	return b.String()
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
