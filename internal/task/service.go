package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

type Service struct {
	// mu serializes writes so that the title check and the insert, and the
	// read and write of a patch, are not interleaved with another write.
	mu           sync.Mutex
	repo         Repository
	publisher    Publisher
	uniqueTitles bool
	now          func() time.Time
}

type ServiceOption func(*Service)

// WithUniqueTitles rejects a create whose title is already in use.
func WithUniqueTitles() ServiceOption {
	return func(s *Service) { s.uniqueTitles = true }
}

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uniqueTitles {
		if err := s.ensureUniqueTitle(ctx, title, 0); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := &Task{
		Title:       title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "task created", "task_id", t.ID)
	s.publish(EventTypeCreated, *t)
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Task, error) {
	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		p.Title = &title
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uniqueTitles && p.Title != nil && *p.Title != t.Title {
		if err := s.ensureUniqueTitle(ctx, *p.Title, id); err != nil {
			return nil, err
		}
	}
	p.apply(t)
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "task updated", "task_id", t.ID, "completed", t.Completed)
	s.publish(EventTypeUpdated, *t)
	return t, nil
}

// ensureUniqueTitle fails when a task other than except already uses title.
func (s *Service) ensureUniqueTitle(ctx context.Context, title string, except int64) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.Title == title && t.ID != except {
			return DuplicateTitleError(title, nil)
		}
	}
	return nil
}

// DuplicateTitleError is returned when a title is already in use.
func DuplicateTitleError(title string, err error) error {
	return cerr.NewError(cerr.InvalidArgument,
		fmt.Sprintf("A task with the title '%s' already exists.", title), err)
}

func (s *Service) publish(eventType EventType, t Task) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishTaskEvent(eventType, t)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", cerr.NewError(cerr.InvalidArgument, "Task title is required.", nil)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", cerr.NewError(cerr.InvalidArgument,
			fmt.Sprintf("Task title must be at most %d characters.", MaxTitleLength), nil)
	}
	return title, nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return cerr.NewError(cerr.InvalidArgument,
			fmt.Sprintf("Task description must be at most %d characters.", MaxDescriptionLength), nil)
	}
	return nil
}
