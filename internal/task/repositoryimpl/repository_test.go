package repositoryimpl

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func repositories(t *testing.T) map[string]task.Repository {
	t.Helper()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	sqliteRepo, err := OpenSQLiteRepository(filepath.Join(t.TempDir(), "db", "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteRepo.Close() })
	require.NoError(t, sqliteRepo.Initialize(context.Background()))

	return map[string]task.Repository{
		"memory": NewMemoryRepository(),
		"yaml":   NewYAMLRepository(local),
		"sqlite": sqliteRepo,
	}
}

func TestRepositoryContract(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

			tasks, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, tasks)

			for i, title := range []string{"first", "second", "third"} {
				tk := &task.Task{Title: title, CreatedAt: now, UpdatedAt: now}
				require.NoError(t, repo.Create(ctx, tk))
				assert.Equal(t, int64(i+1), tk.ID)
			}

			tasks, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, tasks, 3)
			assert.Equal(t, "first", tasks[0].Title)
			assert.Equal(t, "third", tasks[2].Title)
			assert.True(t, now.Equal(tasks[0].CreatedAt))

			got, err := repo.Get(ctx, 2)
			require.NoError(t, err)
			got.Completed = true
			got.Description = "updated"
			require.NoError(t, repo.Update(ctx, got))

			got, err = repo.Get(ctx, 2)
			require.NoError(t, err)
			assert.True(t, got.Completed)
			assert.Equal(t, "updated", got.Description)

			_, err = repo.Get(ctx, 99)
			assert.True(t, cerr.IsCode(err, cerr.NotFound), "got %v", err)

			err = repo.Update(ctx, &task.Task{ID: 99, Title: "ghost"})
			assert.True(t, cerr.IsCode(err, cerr.NotFound), "got %v", err)

			after, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Len(t, after, 3)
		})
	}
}

func TestSeedIfEmpty(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seeded, err := SeedIfEmpty(ctx, repo, task.DemoTasks())
			require.NoError(t, err)
			assert.True(t, seeded)

			seeded, err = SeedIfEmpty(ctx, repo, task.DemoTasks())
			require.NoError(t, err)
			assert.False(t, seeded)

			tasks, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, task.DemoTasks()[0].Title, tasks[0].Title)
			assert.True(t, tasks[0].Completed)
			assert.Len(t, tasks, 3)
		})
	}
}

func TestMemoryRepositorySeedAndReset(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(task.DemoTasks()...)

	tk := &task.Task{Title: "Write tests"}
	require.NoError(t, repo.Create(ctx, tk))
	assert.Equal(t, int64(4), tk.ID)

	repo.Reset()
	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tk = &task.Task{Title: "again"}
	require.NoError(t, repo.Create(ctx, tk))
	assert.Equal(t, int64(1), tk.ID)
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(task.DemoTasks()...)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	tasks[1].Completed = true

	got, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestMemoryRepositoryConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, &task.Task{Title: "x"}))
		}()
	}
	wg.Wait()

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 50)
	seen := make(map[int64]bool)
	for _, tk := range tasks {
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
	}
}

func TestYAMLRepositoryLayout(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(local)

	require.NoError(t, repo.Create(ctx, &task.Task{Title: "a"}))
	exists, err := local.Exists(ctx, "tasks/0000000001.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteRepositoryUniqueTitles(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLiteRepository(filepath.Join(t.TempDir(), "tasks.db"), WithSQLiteUniqueTitles())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.Initialize(ctx))

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &task.Task{Title: "dup", CreatedAt: now, UpdatedAt: now}))
	err = repo.Create(ctx, &task.Task{Title: "dup", CreatedAt: now, UpdatedAt: now})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument), "got %v", err)
	assert.Equal(t, "A task with the title 'dup' already exists.", cerr.Message(err))

	other := &task.Task{Title: "other", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, other))
	other.Title = "dup"
	err = repo.Update(ctx, other)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument), "got %v", err)

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
