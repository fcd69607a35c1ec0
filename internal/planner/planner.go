package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Agent answers one prompt under a system prompt.
type Agent interface {
	Query(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Area string

const (
	AreaFrontend Area = "frontend"
	AreaBackend  Area = "backend"
)

func (a Area) label() string {
	if a == AreaFrontend {
		return "Frontend"
	}
	return "Backend"
}

// Plan is the decomposition of a project brief.
type Plan struct {
	FrontendTasks []string `json:"frontend_tasks"`
	BackendTasks  []string `json:"backend_tasks"`
}

type Item struct {
	Area Area
	Text string
}

// Items lists frontend work before backend work, skipping blank entries.
func (p Plan) Items() []Item {
	items := make([]Item, 0, len(p.FrontendTasks)+len(p.BackendTasks))
	for _, text := range p.FrontendTasks {
		if text = strings.TrimSpace(text); text != "" {
			items = append(items, Item{Area: AreaFrontend, Text: text})
		}
	}
	for _, text := range p.BackendTasks {
		if text = strings.TrimSpace(text); text != "" {
			items = append(items, Item{Area: AreaBackend, Text: text})
		}
	}
	return items
}

// ParsePlan reads the JSON object out of an agent reply. Markdown fences and
// any text around the object are ignored.
func ParsePlan(raw string) (Plan, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return Plan{}, cerr.NewError(cerr.InvalidArgument, "The agent did not return a plan.", nil)
	}
	var plan Plan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err != nil {
		return Plan{}, cerr.NewError(cerr.InvalidArgument, "The agent returned a plan that could not be parsed.", err)
	}
	return plan, nil
}

// Created pairs a plan item with the task recorded for it.
type Created struct {
	Item Item
	Task task.Task
}

// Failure is a plan item that could not be recorded or carried out.
type Failure struct {
	Item Item
	Err  error
}

type Planner struct {
	api         taskapi.API
	coordinator Agent
	worker      Agent
}

type Option func(*Planner)

// WithWorker sets the agent that carries out recorded tasks.
func WithWorker(worker Agent) Option {
	return func(p *Planner) { p.worker = worker }
}

func NewPlanner(api taskapi.API, coordinator Agent, opts ...Option) *Planner {
	p := &Planner{api: api, coordinator: coordinator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decompose asks the coordinator to split brief into frontend and backend
// tasks.
func (p *Planner) Decompose(ctx context.Context, brief string) (Plan, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return Plan{}, cerr.NewError(cerr.InvalidArgument, "Project brief is required.", nil)
	}
	slog.InfoContext(ctx, "decomposing project brief", "length", utf8.RuneCountInString(brief))
	reply, err := p.coordinator.Query(ctx, coordinatorSystemPrompt, fmt.Sprintf(coordinatorPrompt, brief))
	if err != nil {
		return Plan{}, err
	}
	plan, err := ParsePlan(reply)
	if err != nil {
		slog.WarnContext(ctx, "unparsable plan", "reply", reply, "error", err)
		return Plan{}, err
	}
	return plan, nil
}

// Record creates one task per plan item. A failed create is reported and the
// remaining items are still recorded.
func (p *Planner) Record(ctx context.Context, plan Plan) ([]Created, []Failure) {
	var (
		created  []Created
		failures []Failure
	)
	for _, item := range plan.Items() {
		t, err := p.api.CreateTask(ctx, createInput(item))
		if err != nil {
			slog.WarnContext(ctx, "failed to record planned task", "area", item.Area, "error", err)
			failures = append(failures, Failure{Item: item, Err: err})
			continue
		}
		created = append(created, Created{Item: item, Task: t})
	}
	return created, failures
}

// Execute hands each task to the worker in order and marks it completed when
// the worker succeeds. Tasks whose worker run fails stay pending.
func (p *Planner) Execute(ctx context.Context, created []Created) ([]task.Task, []Failure, error) {
	if p.worker == nil {
		return nil, nil, cerr.NewError(cerr.FailedPrecondition, "No worker agent is configured.", nil)
	}
	var (
		done     []task.Task
		failures []Failure
	)
	for i, c := range created {
		if err := ctx.Err(); err != nil {
			return done, failures, cerr.NewError(cerr.Canceled, "planning canceled", err)
		}
		slog.InfoContext(ctx, "running worker", "task_id", c.Task.ID, "area", c.Item.Area,
			"step", fmt.Sprintf("%d/%d", i+1, len(created)))
		if _, err := p.worker.Query(ctx, workerSystemPrompt(c.Item.Area), c.Item.Text); err != nil {
			failures = append(failures, Failure{Item: c.Item, Err: err})
			continue
		}
		t, err := p.api.UpdateTask(ctx, c.Task.ID, task.CompletedPatch(true))
		if err != nil {
			failures = append(failures, Failure{Item: c.Item, Err: err})
			continue
		}
		done = append(done, t)
	}
	return done, failures, nil
}

// createInput keeps the title within the title limit; the full text moves to
// the description when it does not fit.
func createInput(item Item) task.CreateInput {
	in := task.CreateInput{
		Title:       item.Text,
		Description: item.Area.label() + " task.",
	}
	if utf8.RuneCountInString(item.Text) > task.MaxTitleLength {
		in.Title = truncate(item.Text, task.MaxTitleLength)
		in.Description = truncate(item.Area.label()+" task: "+item.Text, task.MaxDescriptionLength)
	}
	return in
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-3])) + "..."
}
