package ui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
)

const (
	msgListLoading     = "Loading tasks..."
	msgListEmpty       = "No tasks to display."
	msgListFetchFailed = "Failed to fetch tasks. Please try again later."
)

type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListPopulated
	ListEmpty
	ListErrored
)

func (s ListState) String() string {
	switch s {
	case ListIdle:
		return "idle"
	case ListLoading:
		return "loading"
	case ListPopulated:
		return "populated"
	case ListEmpty:
		return "empty"
	case ListErrored:
		return "errored"
	}
	return fmt.Sprintf("ListState(%d)", int(s))
}

// List is a read-only view of the task collection.
type List struct {
	id    WidgetID
	api   taskapi.API
	state ListState
	tasks []task.Task
	gen   int
}

func NewList(api taskapi.API) List {
	return List{
		id:  newWidgetID(),
		api: api,
	}
}

func (l List) ID() WidgetID { return l.id }
func (l List) State() ListState { return l.state }
func (l List) Tasks() []task.Task { return l.tasks }

// Mount enters the loading state and issues one fetch.
func (l List) Mount() (List, tea.Cmd) {
	return l.Refresh()
}

// Refresh reloads the tasks. Rows already shown stay visible until the new
// result arrives.
func (l List) Refresh() (List, tea.Cmd) {
	l.gen++
	l.state = ListLoading
	return l, fetchCmd(l.api, l.id, l.gen)
}

func (l List) Update(msg tea.Msg) (List, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchResultMsg:
		if msg.owner != l.id || msg.gen != l.gen {
			return l, nil
		}
		if msg.err != nil {
			slog.Warn("failed to fetch tasks", "error", msg.err)
			l.state = ListErrored
			l.tasks = nil
			return l, nil
		}
		l.tasks = msg.tasks
		if len(l.tasks) == 0 {
			l.state = ListEmpty
		} else {
			l.state = ListPopulated
		}
		return l, nil
	case tea.KeyMsg:
		if msg.String() == "r" && l.state != ListLoading {
			return l.Refresh()
		}
	}
	return l, nil
}

func (l List) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Tasks"))
	b.WriteString("\n\n")

	switch {
	case l.state == ListErrored:
		b.WriteString(errorStyle.Render(msgListFetchFailed))
		b.WriteString("\n")
	case l.state == ListLoading && len(l.tasks) == 0:
		b.WriteString(mutedStyle.Render(msgListLoading))
		b.WriteString("\n")
	case l.state == ListEmpty:
		b.WriteString(mutedStyle.Render(msgListEmpty))
		b.WriteString("\n")
	default:
		if l.state == ListLoading {
			b.WriteString(mutedStyle.Render("Refreshing..."))
			b.WriteString("\n")
		}
		for _, t := range l.tasks {
			b.WriteString(renderListRow(t))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh"))
	return b.String()
}

func renderListRow(t task.Task) string {
	status := "Pending"
	title := t.Title
	if t.Completed {
		status = "Done"
		title = doneStyle.Render(title)
	}
	row := fmt.Sprintf("%-7s  %s", status, title)
	if t.Description != "" {
		row += "\n         " + mutedStyle.Render(t.Description)
	}
	return row
}

// RenderTasks formats tasks the way the list view shows them.
func RenderTasks(tasks []task.Task) string {
	if len(tasks) == 0 {
		return msgListEmpty
	}
	rows := make([]string, len(tasks))
	for i, t := range tasks {
		rows[i] = fmt.Sprintf("%3d  %s", t.ID, renderListRow(t))
	}
	return strings.Join(rows, "\n")
}
