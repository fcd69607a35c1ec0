package repositoryimpl

import (
	"context"

	"github.com/kazz187/taskboard/internal/task"
)

// SeedIfEmpty stores tasks through repo when it holds nothing yet. IDs are
// reassigned by the repository. It reports whether anything was written.
func SeedIfEmpty(ctx context.Context, repo task.Repository, tasks []task.Task) (bool, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, t := range tasks {
		if err := repo.Create(ctx, &t); err != nil {
			return false, err
		}
	}
	return true, nil
}
