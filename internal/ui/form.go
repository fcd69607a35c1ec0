package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const msgTitleRequired = "Task title is required."

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
)

// Form collects a title and an optional description and creates a task.
// Only one create is in flight at a time.
type Form struct {
	id          WidgetID
	api         taskapi.API
	title       textinput.Model
	description textarea.Model
	withDesc    bool
	field       formField
	submitting  bool
	err         string
}

type FormOption func(*Form)

// TitleOnly hides the description field.
func TitleOnly() FormOption {
	return func(f *Form) { f.withDesc = false }
}

func NewForm(api taskapi.API, opts ...FormOption) Form {
	ti := textinput.New()
	ti.Placeholder = "Enter a new task title"
	ti.CharLimit = task.MaxTitleLength
	ti.Width = 50
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Description (optional)"
	ta.ShowLineNumbers = false
	ta.CharLimit = task.MaxDescriptionLength
	ta.SetWidth(50)
	ta.SetHeight(4)
	ta.Cursor.SetMode(cursor.CursorStatic)

	f := Form{
		id:          newWidgetID(),
		api:         api,
		title:       ti,
		description: ta,
		withDesc:    true,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func (f Form) ID() WidgetID { return f.id }
func (f Form) Submitting() bool { return f.submitting }
func (f Form) Err() string { return f.err }
func (f Form) Title() string { return f.title.Value() }
func (f Form) Description() string { return f.description.Value() }
func (f Form) Focused() bool { return f.title.Focused() || f.description.Focused() }

func (f *Form) SetTitle(s string) {
	f.title.SetValue(s)
}

func (f *Form) SetDescription(s string) {
	f.description.SetValue(s)
}

func (f Form) Focus() Form {
	f.focusField(f.field)
	return f
}

func (f Form) Blur() Form {
	f.title.Blur()
	f.description.Blur()
	return f
}

func (f *Form) focusField(field formField) {
	f.field = field
	f.title.Blur()
	f.description.Blur()
	if field == fieldDescription && f.withDesc {
		f.description.Focus()
		return
	}
	f.field = fieldTitle
	f.title.Focus()
}

// Submit validates the input and issues a create. It returns a nil command
// when the title is empty or a create is already in flight.
func (f Form) Submit() (Form, tea.Cmd) {
	if f.submitting {
		return f, nil
	}
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		f.err = msgTitleRequired
		return f, nil
	}
	f.err = ""
	f.submitting = true

	in := task.CreateInput{Title: title}
	if f.withDesc {
		in.Description = f.description.Value()
	}
	api, id := f.api, f.id
	return f, func() tea.Msg {
		t, err := call(func(ctx context.Context) (task.Task, error) {
			return api.CreateTask(ctx, in)
		})
		return createResultMsg{form: id, task: t, err: err}
	}
}

func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	switch msg := msg.(type) {
	case createResultMsg:
		if msg.form != f.id {
			return f, nil
		}
		f.submitting = false
		if msg.err != nil {
			f.err = fmt.Sprintf("Failed to create task: %s", cerr.Message(msg.err))
			return f, nil
		}
		f.err = ""
		f.title.Reset()
		f.description.Reset()
		return f, emit(TaskAddedMsg{Form: f.id, Task: msg.task})
	case tea.KeyMsg:
		return f.handleKey(msg)
	}
	return f, nil
}

func (f Form) handleKey(msg tea.KeyMsg) (Form, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return f.Submit()
	case "enter":
		if f.field == fieldTitle {
			return f.Submit()
		}
	case "tab", "shift+tab":
		if f.withDesc {
			if f.field == fieldTitle {
				f.focusField(fieldDescription)
			} else {
				f.focusField(fieldTitle)
			}
			return f, nil
		}
	}

	var cmd tea.Cmd
	if f.field == fieldDescription && f.withDesc {
		f.description, cmd = f.description.Update(msg)
	} else {
		f.title, cmd = f.title.Update(msg)
	}
	return f, cmd
}

func (f Form) View() string {
	var b strings.Builder
	if f.withDesc {
		b.WriteString(titleStyle.Render("Add New Task"))
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(f.title.View())
	b.WriteString("\n")
	if f.withDesc {
		b.WriteString(f.description.View())
		b.WriteString("\n")
	}
	if f.submitting {
		b.WriteString(mutedStyle.Render("Adding..."))
	} else if f.withDesc {
		b.WriteString(helpStyle.Render("enter/ctrl+s add task • tab switch field"))
	}
	return b.String()
}
