package taskapi

import (
	"context"

	"github.com/kazz187/taskboard/internal/task"
)

// API is the backing service the widgets talk to.
type API interface {
	// FetchTasks returns a snapshot of every task in store order.
	FetchTasks(ctx context.Context) ([]task.Task, error)
	// GetTask fails with cerr.NotFound when id is unknown.
	GetTask(ctx context.Context, id int64) (task.Task, error)
	CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error)
	// UpdateTask fails with cerr.NotFound when id is unknown.
	UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error)
}
