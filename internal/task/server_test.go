package task_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func newTestRouter() http.Handler {
	svc := task.NewService(repositoryimpl.NewMemoryRepository(task.DemoTasks()...), task.WithUniqueTitles())
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	r.Route("/api/tasks", task.NewServer(svc).Register)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServerListTasks(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "Read the design notes", tasks[0].Title)
}

func TestServerCreateTask(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"Write tests","description":"cover the widgets"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, "cover the widgets", created.Description)

	rec = do(t, h, http.MethodPost, "/api/tasks", `{"title":"Write tests"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":"invalid_argument","message":"A task with the title 'Write tests' already exists."}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/tasks", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task title is required.")

	rec = do(t, h, http.MethodPost, "/api/tasks", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fields the API does not know are ignored.
	rec = do(t, h, http.MethodPost, "/api/tasks", `{"title":"Plan sprint","due_date":"2026-11-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Plan sprint", created.Title)
}

func TestServerGetTask(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodGet, "/api/tasks/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Write Go code"`)

	rec = do(t, h, http.MethodGet, "/api/tasks/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)

	rec = do(t, h, http.MethodGet, "/api/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerUpdateTask(t *testing.T) {
	h := newTestRouter()

	rec := do(t, h, http.MethodPatch, "/api/tasks/2", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)

	rec = do(t, h, http.MethodPatch, "/api/tasks/1", `{"completed":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Completed)

	rec = do(t, h, http.MethodPatch, "/api/tasks/99", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/tasks/2", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
