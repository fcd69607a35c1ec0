package task

import "time"

type Task struct {
	ID          int64     `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Patch carries partial updates. A nil field is left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// CompletedPatch is the patch sent by a checkbox toggle.
func CompletedPatch(completed bool) Patch {
	return Patch{Completed: &completed}
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// DemoTasks returns the records the in-process store starts with.
func DemoTasks() []Task {
	return []Task{
		{ID: 1, Title: "Read the design notes", Completed: true},
		{ID: 2, Title: "Write Go code", Completed: false},
		{ID: 3, Title: "Style the terminal UI", Completed: false},
	}
}

type EventType string

const (
	EventTypeCreated EventType = "task.created"
	EventTypeUpdated EventType = "task.updated"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Task      Task      `json:"task"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher receives task lifecycle events.
type Publisher interface {
	PublishTaskEvent(eventType EventType, t Task)
}
