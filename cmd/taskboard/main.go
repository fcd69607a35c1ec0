package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/client"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/planner"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/taskapi"
	"github.com/kazz187/taskboard/internal/ui"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var (
	app  = kingpin.New("taskboard", "Terminal task tracker")
	mock = app.Flag("mock", "Use the in-process mock API instead of the server").Bool()

	uiCmd  = app.Command("ui", "Open the interactive task board").Default()
	uiView = uiCmd.Flag("view", "Initial view (manager, list, guide, form)").Default("manager").Enum("manager", "list", "guide", "form")

	listCmd = app.Command("list", "List all tasks")

	addCmd         = app.Command("add", "Add a new task")
	addTitle       = addCmd.Arg("title", "Task title").Required().String()
	addDescription = addCmd.Flag("description", "Task description").Short('d').String()

	toggleCmd = app.Command("toggle", "Toggle the completion state of a task")
	toggleID  = toggleCmd.Arg("id", "Task ID").Required().Int64()

	guideCmd     = app.Command("guide", "Show the project structure guide")
	guideProject = guideCmd.Flag("project", "Project name shown in the heading").Default("taskboard").String()

	planCmd     = app.Command("plan", "Split a project brief into tasks with an agent")
	planBrief   = planCmd.Arg("brief", "Project brief").Required().String()
	planExecute = planCmd.Flag("execute", "Run a worker agent on each recorded task").Bool()
	planWorkDir = planCmd.Flag("workdir", "Directory the agents work in").Default(".").ExistingDir()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}
	env, err := config.LoadClientEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := newAPI(env, *mock)

	switch command {
	case uiCmd.FullCommand():
		err = handleUI(api, *uiView)
	case listCmd.FullCommand():
		err = handleList(ctx, api)
	case addCmd.FullCommand():
		err = handleAdd(api, *addTitle, *addDescription)
	case toggleCmd.FullCommand():
		err = handleToggle(ctx, api, *toggleID)
	case guideCmd.FullCommand():
		err = handleGuide(*guideProject)
	case planCmd.FullCommand():
		err = handlePlan(ctx, env, api, *planBrief, *planWorkDir, *planExecute)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger keeps the terminal clean: logs go to LOG_FILE or nowhere.
func setupLogger(env *config.ClientEnv) (func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if env.LogFile != "" {
		f, err := os.OpenFile(env.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeFn, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: env.SlogLevel()})))
	return closeFn, nil
}

func newAPI(env *config.ClientEnv, useMock bool) taskapi.API {
	if useMock {
		return taskapi.NewDemo(taskapi.WithLatency(env.MockLatency))
	}
	return client.NewTaskClient(env.APIURL,
		client.WithAPIKey(env.APIKey),
		client.WithTimeout(env.RequestTimeout),
	)
}

func handleUI(api taskapi.API, viewName string) error {
	view, err := ui.ParseView(viewName)
	if err != nil {
		return err
	}
	nodes, err := ui.LoadGuide()
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(ui.NewApp(api, view, "taskboard", nodes), tea.WithAltScreen()).Run()
	return err
}

func handleList(ctx context.Context, api taskapi.API) error {
	tasks, err := api.FetchTasks(ctx)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderTasks(tasks))
	return nil
}

// handleAdd drives a Form outside of a program so the CLI shares its
// validation and error text with the interactive board.
func handleAdd(api taskapi.API, title, description string) error {
	form := ui.NewForm(api)
	form.SetTitle(title)
	form.SetDescription(description)

	form, cmd := form.Submit()
	if cmd == nil {
		return fmt.Errorf("%s", form.Err())
	}
	form, cmd = form.Update(cmd())
	if cmd == nil {
		return fmt.Errorf("%s", form.Err())
	}
	added, ok := cmd().(ui.TaskAddedMsg)
	if !ok {
		return fmt.Errorf("unexpected result from form")
	}
	fmt.Printf("Added task #%d %q.\n", added.Task.ID, added.Task.Title)
	return nil
}

func handleToggle(ctx context.Context, api taskapi.API, id int64) error {
	t, err := api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	updated, err := api.UpdateTask(ctx, id, task.CompletedPatch(!t.Completed))
	if err != nil {
		return err
	}
	state := "Pending"
	if updated.Completed {
		state = "Done"
	}
	fmt.Printf("Task #%d %q is now %s.\n", updated.ID, updated.Title, state)
	return nil
}

func handleGuide(project string) error {
	nodes, err := ui.LoadGuide()
	if err != nil {
		return err
	}
	fmt.Println(ui.NewGuide(project, nodes).View())
	return nil
}

func handlePlan(ctx context.Context, env *config.ClientEnv, api taskapi.API, brief, workDir string, execute bool) error {
	coordinator := planner.NewClaudeAgent(workDir, planner.WithQueryTimeout(env.AgentTimeout))
	var opts []planner.Option
	if execute {
		opts = append(opts, planner.WithWorker(planner.NewClaudeAgent(workDir,
			planner.WithMaxTurns(env.AgentMaxTurns),
			planner.WithPermissionMode("acceptEdits"),
			planner.WithQueryTimeout(env.AgentTimeout),
		)))
	}
	p := planner.NewPlanner(api, coordinator, opts...)

	fmt.Println("Decomposing the project brief...")
	plan, err := p.Decompose(ctx, brief)
	if err != nil {
		return err
	}

	created, failures := p.Record(ctx, plan)
	tasks := make([]task.Task, len(created))
	for i, c := range created {
		tasks[i] = c.Task
	}
	fmt.Printf("Recorded %d task(s):\n%s\n", len(tasks), ui.RenderTasks(tasks))
	printFailures("Could not record", failures)

	if execute {
		done, workerFailures, err := p.Execute(ctx, created)
		fmt.Printf("Completed %d of %d task(s).\n", len(done), len(created))
		printFailures("Worker failed on", workerFailures)
		if err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d planned task(s) could not be recorded", len(failures))
	}
	return nil
}

func printFailures(prefix string, failures []planner.Failure) {
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "%s %s task %q: %s\n", prefix, f.Item.Area, f.Item.Text, cerr.Message(f.Err))
	}
}
