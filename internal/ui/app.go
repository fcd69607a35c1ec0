package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/taskapi"
)

type View int

const (
	ViewManager View = iota
	ViewList
	ViewGuide
	ViewForm
)

var viewNames = []string{"manager", "list", "guide", "form"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return fmt.Sprintf("View(%d)", int(v))
}

func ParseView(s string) (View, error) {
	for i, name := range viewNames {
		if name == s {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// App is the root model. Only the active widget exists; switching views
// disposes it and mounts a fresh one.
type App struct {
	api     taskapi.API
	project string
	nodes   []Node

	view    View
	manager Manager
	list    List
	form    Form
	guide   Guide
	status  string
	initCmd tea.Cmd
}

func NewApp(api taskapi.API, view View, project string, nodes []Node) App {
	a := App{
		api:     api,
		project: project,
		nodes:   nodes,
	}
	a, cmd := a.switchTo(view)
	a.initCmd = cmd
	return a
}

func (a App) Init() tea.Cmd {
	return a.initCmd
}

func (a App) ActiveView() View { return a.view }
func (a App) Manager() Manager { return a.manager }
func (a App) List() List { return a.list }
func (a App) Form() Form { return a.form }

func (a App) switchTo(v View) (App, tea.Cmd) {
	a.view = v
	a.manager, a.list, a.form, a.guide = Manager{}, List{}, Form{}, Guide{}
	a.status = ""

	var cmd tea.Cmd
	switch v {
	case ViewManager:
		a.manager, cmd = NewManager(a.api).Mount()
	case ViewList:
		a.list, cmd = NewList(a.api).Mount()
	case ViewGuide:
		a.guide = NewGuide(a.project, a.nodes)
	case ViewForm:
		a.form = NewForm(a.api)
	}
	return a, cmd
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "f1":
			return a.switchTo(ViewManager)
		case "f2":
			return a.switchTo(ViewList)
		case "f3":
			return a.switchTo(ViewGuide)
		case "f4":
			return a.switchTo(ViewForm)
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case ViewManager:
		a.manager, cmd = a.manager.Update(msg)
	case ViewList:
		a.list, cmd = a.list.Update(msg)
	case ViewForm:
		if added, ok := msg.(TaskAddedMsg); ok && added.Form == a.form.ID() {
			a.status = fmt.Sprintf("Added task #%d %q.", added.Task.ID, added.Task.Title)
			return a, nil
		}
		if _, ok := msg.(tea.KeyMsg); ok {
			a.status = ""
		}
		a.form, cmd = a.form.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("F%d %s", i+1, name)
		if View(i) == a.view {
			tabs[i] = activeTab.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}

	var body string
	switch a.view {
	case ViewManager:
		body = a.manager.View()
	case ViewList:
		body = a.list.View()
	case ViewGuide:
		body = a.guide.View()
	case ViewForm:
		body = a.form.View()
		if a.status != "" {
			body += "\n\n" + mutedStyle.Render(a.status)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc quit"))
	b.WriteString("\n")
	return b.String()
}
