package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/admin"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func newBackend(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	bus := eventbus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = bus.Close() })
	svc := task.NewService(repositoryimpl.NewMemoryRepository(task.DemoTasks()...),
		task.WithUniqueTitles(), task.WithPublisher(bus))
	env := &config.Env{BaseEnv: config.BaseEnv{APIKey: apiKey}}
	srv := server.NewServer(env, task.NewServer(svc), event.NewServer(bus), admin.NewServer())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestTaskClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewTaskClient(newBackend(t, "").URL + "/")

	tasks, err := c.FetchTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	created, err := c.CreateTask(ctx, task.CreateInput{Title: "Write tests"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	updated, err := c.UpdateTask(ctx, 2, task.CompletedPatch(true))
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	got, err := c.GetTask(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Write tests", got.Title)
}

func TestTaskClientServerErrors(t *testing.T) {
	ctx := context.Background()
	c := NewTaskClient(newBackend(t, "").URL)

	_, err := c.UpdateTask(ctx, 99, task.CompletedPatch(true))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	_, err = c.CreateTask(ctx, task.CreateInput{Title: "Write Go code"})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Equal(t, "A task with the title 'Write Go code' already exists.", cerr.Message(err))
}

func TestTaskClientAPIKey(t *testing.T) {
	ctx := context.Background()
	ts := newBackend(t, "secret")

	_, err := NewTaskClient(ts.URL).FetchTasks(ctx)
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated), "got %v", err)

	tasks, err := NewTaskClient(ts.URL, WithAPIKey("secret")).FetchTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestTaskClientFallbackMessages(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()
	c := NewTaskClient(ts.URL)

	_, err := c.FetchTasks(ctx)
	assert.Equal(t, "Failed to fetch tasks.", cerr.Message(err))
	_, err = c.CreateTask(ctx, task.CreateInput{Title: "x"})
	assert.Equal(t, "Failed to add task.", cerr.Message(err))
	_, err = c.UpdateTask(ctx, 1, task.CompletedPatch(true))
	assert.Equal(t, "Failed to update task.", cerr.Message(err))
}

func TestTaskClientUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewTaskClient(url).FetchTasks(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
	assert.Equal(t, "Failed to fetch tasks.", cerr.Message(err))
}
