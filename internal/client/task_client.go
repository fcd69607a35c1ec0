package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	msgFetchFailed  = "Failed to fetch tasks."
	msgCreateFailed = "Failed to add task."
	msgUpdateFailed = "Failed to update task."

	maxErrorBody = 64 << 10
)

var _ taskapi.API = (*TaskClient)(nil)

// TaskClient talks to the task HTTP API.
type TaskClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*TaskClient)

func WithAPIKey(key string) Option {
	return func(c *TaskClient) { c.apiKey = key }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *TaskClient) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *TaskClient) { c.httpClient = &http.Client{Timeout: d} }
}

// NewTaskClient creates a new task client
func NewTaskClient(baseURL string, opts ...Option) *TaskClient {
	c := &TaskClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTasks lists all tasks
func (c *TaskClient) FetchTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks, msgFetchFailed); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a new task
func (c *TaskClient) CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &t, msgCreateFailed); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask applies a partial update
func (c *TaskClient) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), p, &t, msgUpdateFailed); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (c *TaskClient) GetTask(ctx context.Context, id int64) (task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, &t, "Failed to fetch task."); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (c *TaskClient) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return cerr.NewError(cerr.Internal, fallback, fmt.Errorf("failed to marshal request: %w", err))
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return cerr.NewError(cerr.Internal, fallback, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return cerr.NewError(cerr.Canceled, "request canceled", err)
		}
		return cerr.NewError(cerr.Unavailable, fallback, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return cerr.DecodeHTTPError(resp.StatusCode, b, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cerr.NewError(cerr.Internal, fallback, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
