package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// UpdateStatusFunc persists a new completion state and returns the
// confirmed task.
type UpdateStatusFunc func(ctx context.Context, id int64, completed bool) (task.Task, error)

// Item renders one task row with a checkbox. It never changes the task it
// was given. The confirmed task only arrives through SetTask.
type Item struct {
	id       WidgetID
	task     task.Task
	update   UpdateStatusFunc
	updating bool
	err      string
}

func NewItem(t task.Task, update UpdateStatusFunc) Item {
	return Item{
		id:     newWidgetID(),
		task:   t,
		update: update,
	}
}

func (i Item) ID() WidgetID { return i.id }
func (i Item) Task() task.Task { return i.task }
func (i Item) Updating() bool { return i.updating }
func (i Item) Err() string { return i.err }

// SetTask replaces the props with a task confirmed by the collection owner.
func (i Item) SetTask(t task.Task) Item {
	i.task = t
	return i
}

// Toggle requests the opposite completion state. A toggle while another is
// in flight is ignored.
func (i Item) Toggle() (Item, tea.Cmd) {
	if i.updating || i.update == nil {
		return i, nil
	}
	i.updating = true
	i.err = ""

	update, id, taskID, completed := i.update, i.id, i.task.ID, !i.task.Completed
	return i, func() tea.Msg {
		t, err := call(func(ctx context.Context) (task.Task, error) {
			return update(ctx, taskID, completed)
		})
		return updateResultMsg{item: id, task: t, err: err}
	}
}

func (i Item) Update(msg tea.Msg) (Item, tea.Cmd) {
	switch msg := msg.(type) {
	case updateResultMsg:
		if msg.item != i.id {
			return i, nil
		}
		i.updating = false
		if msg.err != nil {
			i.err = fmt.Sprintf("Failed to update: %s", cerr.Message(msg.err))
			return i, nil
		}
		return i, emit(TaskUpdatedMsg{Item: i.id, Task: msg.task})
	}
	return i, nil
}

func (i Item) Checkbox() string {
	if i.task.Completed {
		return "[x]"
	}
	return "[ ]"
}

func (i Item) View(selected bool) string {
	title := i.task.Title
	if i.task.Completed {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s", i.Checkbox(), title)
	if i.updating {
		line += " " + mutedStyle.Render("(updating...)")
	}
	if selected {
		line = selectedStyle.Render("> ") + line
	} else {
		line = "  " + line
	}

	var b strings.Builder
	b.WriteString(line)
	if i.task.Description != "" {
		b.WriteString("\n      ")
		b.WriteString(mutedStyle.Render(i.task.Description))
	}
	if i.err != "" {
		b.WriteString("\n      ")
		b.WriteString(errorStyle.Render(i.err))
	}
	return b.String()
}
