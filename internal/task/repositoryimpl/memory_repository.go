package repositoryimpl

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ task.Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps tasks in process memory. Every instance is
// independent, so tests can construct and seed their own.
type MemoryRepository struct {
	mu     sync.RWMutex
	tasks  []task.Task
	nextID int64
}

func NewMemoryRepository(seed ...task.Task) *MemoryRepository {
	r := &MemoryRepository{}
	r.Seed(seed)
	return r
}

// Seed replaces the contents with tasks. The next assigned ID follows the
// highest seeded one.
func (r *MemoryRepository) Seed(tasks []task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = slices.Clone(tasks)
	r.nextID = 1
	for _, t := range tasks {
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
}

func (r *MemoryRepository) Reset() {
	r.Seed(nil)
}

func (r *MemoryRepository) List(_ context.Context) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks), nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, notFound(id)
	}
	t := r.tasks[i]
	return &t, nil
}

func (r *MemoryRepository) Create(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	r.tasks = append(r.tasks, *t)
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(t.ID)
	if i < 0 {
		return notFound(t.ID)
	}
	r.tasks[i] = *t
	return nil
}

func (r *MemoryRepository) index(id int64) int {
	return slices.IndexFunc(r.tasks, func(t task.Task) bool { return t.ID == id })
}

func notFound(id int64) error {
	return cerr.NewError(cerr.NotFound, fmt.Sprintf("Task with id %d not found.", id), nil)
}
