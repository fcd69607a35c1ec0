package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var (
	_ task.Repository  = (*SQLiteRepository)(nil)
	_ task.Initializer = (*SQLiteRepository)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

const uniqueTitleIndex = `CREATE UNIQUE INDEX IF NOT EXISTS tasks_title_unique ON tasks (title)`

type SQLiteRepository struct {
	db           *sql.DB
	uniqueTitles bool
}

type SQLiteOption func(*SQLiteRepository)

// WithSQLiteUniqueTitles adds a unique index on title when the schema is
// initialized.
func WithSQLiteUniqueTitles() SQLiteOption {
	return func(r *SQLiteRepository) { r.uniqueTitles = true }
}

// OpenSQLiteRepository opens (creating if needed) the database file. The
// schema is not created until Initialize is called.
func OpenSQLiteRepository(dbPath string, opts ...SQLiteOption) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	r := &SQLiteRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return cerr.NewError(cerr.Internal, "failed to initialize database", err)
	}
	if r.uniqueTitles {
		if _, err := r.db.ExecContext(ctx, uniqueTitleIndex); err != nil {
			return cerr.NewError(cerr.Internal, "failed to initialize database", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]task.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, completed, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		return nil, dbError("list tasks", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, dbError("list tasks", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list tasks", err)
	}
	return tasks, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, completed, created_at, updated_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, dbError("get task", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, t *task.Task) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Completed, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return task.DuplicateTitleError(t.Title, err)
		}
		return dbError("create task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dbError("create task", err)
	}
	t.ID = id
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Completed, formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return task.DuplicateTitleError(t.Title, err)
		}
		return dbError("update task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("update task", err)
	}
	if n == 0 {
		return notFound(t.ID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*task.Task, error) {
	var (
		t                    task.Task
		createdAt, updatedAt string
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func dbError(op string, err error) error {
	return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to %s: %w", op, err))
}
