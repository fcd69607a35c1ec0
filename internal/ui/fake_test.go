package ui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
)

// fakeAPI counts calls and can fail or panic on demand. Everything else is
// served by a seeded mock without latency.
type fakeAPI struct {
	mu sync.Mutex

	local *taskapi.Local

	fetchCalls  int
	createCalls int
	updateCalls int

	fetchErr    error
	createErr   error
	updateErr   error
	createPanic bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{local: taskapi.NewDemo(taskapi.WithLatency(0))}
}

func (f *fakeAPI) FetchTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	f.fetchCalls++
	err := f.fetchErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.local.FetchTasks(ctx)
}

func (f *fakeAPI) GetTask(ctx context.Context, id int64) (task.Task, error) {
	return f.local.GetTask(ctx, id)
}

func (f *fakeAPI) CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error) {
	f.mu.Lock()
	f.createCalls++
	err, panicking := f.createErr, f.createPanic
	f.mu.Unlock()
	if panicking {
		panic("create exploded")
	}
	if err != nil {
		return task.Task{}, err
	}
	return f.local.CreateTask(ctx, in)
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	f.mu.Lock()
	f.updateCalls++
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return task.Task{}, err
	}
	return f.local.UpdateTask(ctx, id, p)
}

func (f *fakeAPI) calls() (fetch, create, update int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.createCalls, f.updateCalls
}

// run executes cmd and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	return cmd()
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	case "f4":
		return tea.KeyMsg{Type: tea.KeyF4}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
