package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/go-viper/mapstructure/v2"
)

type CopilotOptions struct {
	// Model is the Copilot model id. Blank lets the CLI pick its default.
	Model    string
	LogLevel string
	// Timeout bounds one Generate call. Zero means the caller's context
	// is the only limit.
	Timeout time.Duration

	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// CopilotModel talks to GitHub Copilot. The client is started lazily on the
// first call and every call runs in a fresh session. A failed start is tried
// again on the next call.
type CopilotModel struct {
	modelID string
	timeout time.Duration
	client  copilotClient

	startMu sync.Mutex
	started bool
}

func NewCopilotModel(opts CopilotOptions) *CopilotModel {
	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = "error"
	}

	clientOptions := &copilot.ClientOptions{
		LogLevel:        logLevel,
		AutoStart:       copilot.Bool(false),
		AutoRestart:     copilot.Bool(true),
		UseLoggedInUser: copilot.Bool(true),
	}

	newClient := newCopilotClient
	if opts.NewCopilotClient != nil {
		newClient = opts.NewCopilotClient
	}

	return &CopilotModel{
		modelID: opts.Model,
		timeout: opts.Timeout,
		client:  newClient(clientOptions),
	}
}

func (m *CopilotModel) Generate(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("empty prompt")
	}

	if err := m.ensureStarted(ctx); err != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	capture := &outputCapture{}
	config := &copilot.SessionConfig{
		Model:               m.modelID,
		OnPermissionRequest: approveAll,
	}
	if req.Output != nil {
		config.Tools = []copilot.Tool{capture.tool(req.Output)}
	}

	session, err := m.client.CreateSession(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	collector := &assistantText{}
	unsubscribe := session.On(collector.On)
	defer unsubscribe()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: composePrompt(req),
	})
	if err != nil {
		return nil, fmt.Errorf("copilot session %s: %w", session.SessionID(), err)
	}

	reply := &Reply{Structured: capture.value()}
	if resp != nil && resp.Data.Content != nil {
		reply.Text = *resp.Data.Content
	} else {
		reply.Text = collector.String()
	}
	return reply, nil
}

// ensureStarted starts the client from one goroutine at a time; the client's
// own autostart races when several requests arrive together. The start
// outlives the request that triggered it.
func (m *CopilotModel) ensureStarted(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.started {
		return nil
	}
	if err := m.client.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	m.started = true
	return nil
}

// Close stops the Copilot client if it was ever started.
func (m *CopilotModel) Close() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false
	return m.client.Stop()
}

// composePrompt folds the system text into the user prompt; sessions don't
// take a separate system message.
func composePrompt(req Request) string {
	var b strings.Builder
	if system := strings.TrimSpace(req.System); system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	b.WriteString(req.Prompt)
	if req.Output != nil {
		fmt.Fprintf(&b, "\n\nSubmit your answer by calling the %s tool exactly once.", req.Output.Name)
	}
	return b.String()
}

// outputCapture records the arguments of the structured-output tool call.
type outputCapture struct {
	mu   sync.Mutex
	args map[string]any
}

func (c *outputCapture) tool(spec *OutputSpec) copilot.Tool {
	return copilot.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  spec.Schema,
		Handler: func(invocation copilot.ToolInvocation) (copilot.ToolResult, error) {
			var args map[string]any
			if err := mapstructure.Decode(invocation.Arguments, &args); err != nil {
				return copilot.ToolResult{}, fmt.Errorf("decode %s arguments: %w", spec.Name, err)
			}

			c.mu.Lock()
			c.args = args
			c.mu.Unlock()
			return copilot.ToolResult{}, nil
		},
	}
}

func (c *outputCapture) value() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.args == nil {
		return nil
	}
	return c.args
}

// assistantText collects assistant messages in case SendAndWait returns no
// final event.
type assistantText struct {
	mu    sync.Mutex
	parts []string
}

func (a *assistantText) On(event copilot.SessionEvent) {
	logEvent(event)

	if event.Type != copilot.AssistantMessage || event.Data.Content == nil {
		return
	}
	a.mu.Lock()
	a.parts = append(a.parts, *event.Data.Content)
	a.mu.Unlock()
}

func (a *assistantText) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.parts, "")
}

func logEvent(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{"type", event.Type}
	if event.Data.Content != nil {
		attrs = append(attrs, "content", *event.Data.Content)
	}
	if event.Data.ToolName != nil {
		attrs = append(attrs, "toolName", *event.Data.ToolName)
	}
	slog.Debug("copilot event", attrs...)
}

func approveAll(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "approved"}, nil
}
