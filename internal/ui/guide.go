package ui

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed guide.yaml
var guideYAML []byte

type NodeType string

const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

type Node struct {
	Name        string   `yaml:"name"`
	Type        NodeType `yaml:"type"`
	Description string   `yaml:"description"`
	Children    []Node   `yaml:"children,omitempty"`
}

// LoadGuide parses the bundled project structure.
func LoadGuide() ([]Node, error) {
	var nodes []Node
	if err := yaml.Unmarshal(guideYAML, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse guide: %w", err)
	}
	return nodes, nil
}

// Guide renders a static project structure tree.
type Guide struct {
	project string
	nodes   []Node
}

func NewGuide(project string, nodes []Node) Guide {
	return Guide{project: project, nodes: nodes}
}

func (g Guide) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Project Structure Guide"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "A typical Go project (e.g., %q) is structured as follows:\n\n", g.project)
	writeNodes(&b, g.nodes, "")
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []Node, prefix string) {
	for i, n := range nodes {
		branch, childPrefix := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, childPrefix = "└── ", "    "
		}
		name := fileStyle.Render(n.Name)
		if n.Type == NodeFolder {
			name = folderStyle.Render(n.Name)
		}
		fmt.Fprintf(b, "%s%s%s %s\n", prefix, branch, name, mutedStyle.Render("- "+n.Description))
		writeNodes(b, n.Children, prefix+childPrefix)
	}
}
