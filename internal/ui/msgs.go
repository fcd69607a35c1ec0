package ui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

// WidgetID identifies one mounted widget instance. Results addressed to an
// ID that is no longer mounted are dropped.
type WidgetID string

func newWidgetID() WidgetID {
	return WidgetID(ulid.Make().String())
}

// TaskAddedMsg is emitted by a Form after the backing API confirmed a create.
type TaskAddedMsg struct {
	Form WidgetID
	Task task.Task
}

// TaskUpdatedMsg is emitted by an Item after the backing API confirmed a
// toggle. The owner of the collection decides whether to apply it.
type TaskUpdatedMsg struct {
	Item WidgetID
	Task task.Task
}

type createResultMsg struct {
	form WidgetID
	task task.Task
	err  error
}

type updateResultMsg struct {
	item WidgetID
	task task.Task
	err  error
}

type fetchResultMsg struct {
	owner WidgetID
	gen   int
	tasks []task.Task
	err   error
}

// callTimeout bounds every backing call issued by a widget.
const callTimeout = 30 * time.Second

// call runs a backing call off the event loop. A panic becomes an error so
// that the widget that issued the call can show it.
func call[T any](fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	v, err := panicerr.Call(ctx, fn)
	if panicerr.IsPanic(err) {
		slog.Error("backing call panicked", "error", err)
		return v, cerr.NewError(cerr.Internal, "unexpected error", err)
	}
	return v, err
}

func fetchCmd(api taskapi.API, owner WidgetID, gen int) tea.Cmd {
	return func() tea.Msg {
		tasks, err := call(api.FetchTasks)
		return fetchResultMsg{owner: owner, gen: gen, tasks: tasks, err: err}
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
