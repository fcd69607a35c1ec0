package taskapi

import (
	"context"
	"time"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const DefaultLatency = 500 * time.Millisecond

var _ API = (*Local)(nil)

// Local serves the API from an in-process store after a simulated network
// delay. Each instance owns its store.
type Local struct {
	repo    *repositoryimpl.MemoryRepository
	service *task.Service
	latency time.Duration
}

type LocalOption func(*Local)

func WithLatency(d time.Duration) LocalOption {
	return func(l *Local) { l.latency = d }
}

func NewLocal(repo *repositoryimpl.MemoryRepository, opts ...LocalOption) *Local {
	l := &Local{
		repo:    repo,
		service: task.NewService(repo),
		latency: DefaultLatency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDemo returns a Local seeded with task.DemoTasks.
func NewDemo(opts ...LocalOption) *Local {
	return NewLocal(repositoryimpl.NewMemoryRepository(task.DemoTasks()...), opts...)
}

func (l *Local) Seed(tasks []task.Task) {
	l.repo.Seed(tasks)
}

func (l *Local) Reset() {
	l.repo.Reset()
}

func (l *Local) FetchTasks(ctx context.Context) ([]task.Task, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	return l.service.List(ctx)
}

func (l *Local) GetTask(ctx context.Context, id int64) (task.Task, error) {
	if err := l.wait(ctx); err != nil {
		return task.Task{}, err
	}
	t, err := l.service.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

func (l *Local) CreateTask(ctx context.Context, in task.CreateInput) (task.Task, error) {
	if err := l.wait(ctx); err != nil {
		return task.Task{}, err
	}
	t, err := l.service.Create(ctx, in)
	if err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

func (l *Local) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := l.wait(ctx); err != nil {
		return task.Task{}, err
	}
	t, err := l.service.Update(ctx, id, p)
	if err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

func (l *Local) wait(ctx context.Context) error {
	if l.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return cerr.NewError(cerr.Canceled, "request canceled", ctx.Err())
	}
}
