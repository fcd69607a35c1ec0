package task

import "context"

// Repository stores tasks in insertion order. Implementations must be safe
// for concurrent use and must assign IDs sequentially starting at 1.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	// Create assigns t.ID and stores the task.
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
}

// Initializer is implemented by repositories that need a schema.
type Initializer interface {
	Initialize(ctx context.Context) error
}
