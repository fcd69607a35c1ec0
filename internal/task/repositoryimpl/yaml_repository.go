package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const tasksPrefix = "tasks"

var _ task.Repository = (*YAMLRepository)(nil)

// YAMLRepository stores one YAML document per task. Paths are zero padded so
// that the sorted listing is insertion order.
type YAMLRepository struct {
	storage storage.Storage
	// serializes ID assignment
	mu sync.Mutex
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id int64) string {
	return fmt.Sprintf("%s/%010d.yaml", tasksPrefix, id)
}

func (r *YAMLRepository) List(ctx context.Context) ([]task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}
	tasks := make([]task.Task, 0, len(paths))
	for _, p := range paths {
		t, err := r.read(ctx, p)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, cerr.WrapStorageReadError("tasks", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (r *YAMLRepository) Get(ctx context.Context, id int64) (*task.Task, error) {
	t, err := r.read(ctx, path(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, cerr.WrapStorageReadError("task", err)
	}
	return t, nil
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := r.List(ctx)
	if err != nil {
		return err
	}
	var maxID int64
	for _, existing := range tasks {
		maxID = max(maxID, existing.ID)
	}
	t.ID = maxID + 1
	return r.write(ctx, t)
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	exists, err := r.storage.Exists(ctx, path(t.ID))
	if err != nil {
		return cerr.WrapStorageReadError("task", err)
	}
	if !exists {
		return notFound(t.ID)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) read(ctx context.Context, p string) (*task.Task, error) {
	data, err := r.storage.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", p, err)
	}
	return &t, nil
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	if err := r.storage.Write(ctx, path(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}
