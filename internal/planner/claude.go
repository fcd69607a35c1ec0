package planner

import (
	"context"
	"log/slog"
	"time"

	claudeagent "github.com/kazz187/claude-agent-sdk-go"

	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ Agent = (*ClaudeAgent)(nil)

// ClaudeAgent runs each query as a one-shot Claude session.
type ClaudeAgent struct {
	workDir        string
	maxTurns       int
	permissionMode claudeagent.PermissionMode
	timeout        time.Duration
}

type ClaudeOption func(*ClaudeAgent)

func WithMaxTurns(n int) ClaudeOption {
	return func(a *ClaudeAgent) { a.maxTurns = n }
}

// WithPermissionMode sets the tool permission mode, e.g. "acceptEdits" for a
// worker that writes files.
func WithPermissionMode(mode string) ClaudeOption {
	return func(a *ClaudeAgent) { a.permissionMode = claudeagent.PermissionMode(mode) }
}

func WithQueryTimeout(d time.Duration) ClaudeOption {
	return func(a *ClaudeAgent) { a.timeout = d }
}

func NewClaudeAgent(workDir string, opts ...ClaudeOption) *ClaudeAgent {
	a := &ClaudeAgent{
		workDir:        workDir,
		maxTurns:       1,
		permissionMode: claudeagent.PermissionModeDefault,
		timeout:        5 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ClaudeAgent) options(systemPrompt string) *claudeagent.ClaudeAgentOptions {
	maxTurns := a.maxTurns
	return &claudeagent.ClaudeAgentOptions{
		SystemPrompt:   systemPrompt,
		Cwd:            a.workDir,
		PermissionMode: a.permissionMode,
		MaxTurns:       &maxTurns,
	}
}

func (a *ClaudeAgent) Query(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result, err := claudeagent.RunQuerySync(ctx, prompt, a.options(systemPrompt))
	if err != nil {
		return "", cerr.NewError(cerr.Unavailable, "The agent could not be reached.", err)
	}
	if result.Result == nil {
		return "", cerr.NewError(cerr.Internal, "The agent returned no result.", nil)
	}
	if result.Result.IsError {
		slog.WarnContext(ctx, "agent returned an error", "session_id", result.Result.SessionID)
		return "", cerr.NewError(cerr.Internal, "The agent failed: "+result.Result.Result, nil)
	}
	return result.Result.Result, nil
}
