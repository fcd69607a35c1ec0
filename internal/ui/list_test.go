package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
)

func TestListMountShowsLoadingNotEmpty(t *testing.T) {
	api := newFakeAPI()
	l := NewList(api)
	assert.Equal(t, ListIdle, l.State())

	l, cmd := l.Mount()
	require.NotNil(t, cmd)
	assert.Equal(t, ListLoading, l.State())
	view := l.View()
	assert.Contains(t, view, "Loading tasks...")
	assert.NotContains(t, view, "No tasks to display.")

	fetched, _, _ := api.calls()
	assert.Zero(t, fetched, "the fetch runs only when the command does")

	l, _ = l.Update(run(t, cmd))
	assert.Equal(t, ListPopulated, l.State())
	view = l.View()
	assert.Contains(t, view, "Done")
	assert.Contains(t, view, "Pending")
	assert.Contains(t, view, "Read the design notes")
	assert.NotContains(t, view, "Loading tasks...")
}

func TestListEmpty(t *testing.T) {
	api := newFakeAPI()
	api.local.Reset()

	l, cmd := NewList(api).Mount()
	l, _ = l.Update(run(t, cmd))
	assert.Equal(t, ListEmpty, l.State())
	assert.Contains(t, l.View(), "No tasks to display.")
}

func TestListFetchFailure(t *testing.T) {
	api := newFakeAPI()
	api.fetchErr = errors.New("boom")

	l, cmd := NewList(api).Mount()
	l, _ = l.Update(run(t, cmd))
	assert.Equal(t, ListErrored, l.State())
	assert.Contains(t, l.View(), "Failed to fetch tasks. Please try again later.")

	api.fetchErr = nil
	l, cmd = l.Update(key("r"))
	l, _ = l.Update(run(t, cmd))
	assert.Equal(t, ListPopulated, l.State())
}

func TestListRefresh(t *testing.T) {
	api := newFakeAPI()
	l, cmd := NewList(api).Mount()
	l, _ = l.Update(run(t, cmd))

	l, cmd = l.Update(key("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, ListLoading, l.State())
	assert.Contains(t, l.View(), "Write Go code")

	// a second refresh while loading is ignored
	_, again := l.Update(key("r"))
	assert.Nil(t, again)

	_, err := api.local.UpdateTask(t.Context(), 2, task.CompletedPatch(true))
	require.NoError(t, err)
	l, _ = l.Update(run(t, cmd))
	assert.True(t, l.Tasks()[1].Completed)
}

func TestListIgnoresForeignResults(t *testing.T) {
	api := newFakeAPI()
	_, cmd := NewList(api).Mount()
	msg := run(t, cmd)

	l, _ := NewList(api).Mount()
	l, next := l.Update(msg)
	assert.Nil(t, next)
	assert.Equal(t, ListLoading, l.State())
}

func TestRenderTasks(t *testing.T) {
	out := RenderTasks(task.DemoTasks())
	assert.Contains(t, out, "1  Done")
	assert.Contains(t, out, "2  Pending")
	assert.Equal(t, "No tasks to display.", RenderTasks(nil))
}
