package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestFormSubmitIsSingleFlight(t *testing.T) {
	api := newFakeAPI()
	f := NewForm(api)
	f.SetTitle("Write tests")
	f.SetDescription("cover the widgets")

	f, cmd := f.Submit()
	require.NotNil(t, cmd)
	assert.True(t, f.Submitting())
	assert.Contains(t, f.View(), "Adding...")

	f, again := f.Submit()
	assert.Nil(t, again)
	f, viaKey := f.Update(key("enter"))
	assert.Nil(t, viaKey)

	msg := run(t, cmd)
	_, created, _ := api.calls()
	assert.Equal(t, 1, created)

	f, cmd = f.Update(msg)
	assert.False(t, f.Submitting())
	assert.Empty(t, f.Err())
	assert.Empty(t, f.Title())
	assert.Empty(t, f.Description())

	added, ok := run(t, cmd).(TaskAddedMsg)
	require.True(t, ok)
	assert.Equal(t, f.ID(), added.Form)
	assert.Equal(t, int64(4), added.Task.ID)
	assert.Equal(t, "Write tests", added.Task.Title)
	assert.Equal(t, "cover the widgets", added.Task.Description)
	assert.False(t, added.Task.Completed)
}

func TestFormRejectsBlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t"} {
		api := newFakeAPI()
		f := NewForm(api)
		f.SetTitle(title)

		f, cmd := f.Submit()
		assert.Nil(t, cmd)
		assert.False(t, f.Submitting())
		assert.Equal(t, "Task title is required.", f.Err())
		assert.Contains(t, f.View(), "Task title is required.")

		_, created, _ := api.calls()
		assert.Zero(t, created)
	}
}

func TestFormFailureKeepsInput(t *testing.T) {
	api := newFakeAPI()
	api.createErr = cerr.NewError(cerr.Unavailable, "Failed to add task.", nil)
	f := NewForm(api)
	f.SetTitle("Write tests")
	f.SetDescription("details")

	f, cmd := f.Submit()
	f, next := f.Update(run(t, cmd))
	assert.Nil(t, next)
	assert.False(t, f.Submitting())
	assert.Equal(t, "Failed to create task: Failed to add task.", f.Err())
	assert.Equal(t, "Write tests", f.Title())
	assert.Equal(t, "details", f.Description())

	// a manual retry is allowed once settled
	api.createErr = nil
	f, cmd = f.Submit()
	require.NotNil(t, cmd)
	f, _ = f.Update(run(t, cmd))
	assert.Empty(t, f.Err())
}

func TestFormPanicBecomesError(t *testing.T) {
	api := newFakeAPI()
	api.createPanic = true
	f := NewForm(api)
	f.SetTitle("boom")

	f, cmd := f.Submit()
	f, _ = f.Update(run(t, cmd))
	assert.Equal(t, "Failed to create task: unexpected error", f.Err())
	assert.False(t, f.Submitting())
}

func TestFormTitleOnlyIgnoresDescription(t *testing.T) {
	api := newFakeAPI()
	f := NewForm(api, TitleOnly())
	f.SetTitle("  trimmed  ")
	f.SetDescription("hidden")

	f, cmd := f.Submit()
	_, cmd = f.Update(run(t, cmd))
	added := run(t, cmd).(TaskAddedMsg)
	assert.Equal(t, "trimmed", added.Task.Title)
	assert.Empty(t, added.Task.Description)
}

func TestFormIgnoresOtherFormsResults(t *testing.T) {
	api := newFakeAPI()
	a := NewForm(api)
	b := NewForm(api)
	a.SetTitle("from a")

	a, cmd := a.Submit()
	msg := run(t, cmd)

	b, next := b.Update(msg)
	assert.Nil(t, next)
	assert.False(t, b.Submitting())

	a, next = a.Update(msg)
	assert.NotNil(t, next)
	assert.False(t, a.Submitting())
}

func TestFormTyping(t *testing.T) {
	f := NewForm(newFakeAPI())
	f, _ = f.Update(key("Hi"))
	assert.Equal(t, "Hi", f.Title())

	f, _ = f.Update(key("tab"))
	f, _ = f.Update(key("there"))
	assert.Equal(t, "Hi", f.Title())
	assert.Equal(t, "there", f.Description())

	// enter in the description inserts a newline instead of submitting
	f, _ = f.Update(key("enter"))
	assert.False(t, f.Submitting())
	assert.Equal(t, "there\n", f.Description())
}
