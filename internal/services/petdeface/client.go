package petdeface

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"petdeface/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBinary overrides the executable launched for the runtime, for example
// with the path resolved by deps.ResolveRuntime.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// Settings describes the container invocation.
type Settings struct {
	Runtime        string
	Image          string
	Command        string
	LicenseMount   string
	TimeoutSeconds int
}

// Invocation holds the per-run arguments.
type Invocation struct {
	InputDir     string
	OutputDir    string
	LicensePath  string
	ProcessCount string
	Placement    string
}

// Client wraps the container runtime interaction.
type Client struct {
	settings Settings
	binary   string
	timeout  time.Duration
	exec     Executor
}

// New constructs a pipeline client.
func New(settings Settings, opts ...Option) (*Client, error) {
	settings.Runtime = strings.ToLower(strings.TrimSpace(settings.Runtime))
	switch settings.Runtime {
	case RuntimeSingularity, RuntimeApptainer, RuntimeDocker:
	default:
		return nil, fmt.Errorf("unsupported container runtime %q", settings.Runtime)
	}
	if strings.TrimSpace(settings.Image) == "" {
		return nil, errors.New("pipeline image required")
	}
	client := &Client{
		settings: settings,
		binary:   settings.Runtime,
		timeout:  time.Duration(settings.TimeoutSeconds) * time.Second,
		exec:     commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Command returns the executable and arguments Run would launch.
func (c *Client) Command(inv Invocation) (string, []string) {
	return c.binary, BuildArgs(c.settings, inv)
}

// Run executes the pipeline and blocks until it exits. Each output line is
// passed to onLine. A non-zero exit, a failed start, or a timeout is reported
// as an external tool error carrying the tail of the output.
func (c *Client) Run(ctx context.Context, inv Invocation, onLine func(string)) error {
	if err := inv.validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "dispatch", "build command", err.Error(), nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tail := newLineTail(tailLines)
	binary, args := c.Command(inv)
	err := c.exec.Run(runCtx, binary, args, func(line string) {
		tail.add(line)
		if onLine != nil {
			onLine(line)
		}
	})
	if err == nil {
		return nil
	}

	message := fmt.Sprintf("%s exited with failure", c.settings.Runtime)
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		message = fmt.Sprintf("pipeline exceeded timeout of %s", c.timeout)
	case ctx.Err() != nil:
		message = "pipeline canceled"
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			message = fmt.Sprintf("%s exited with status %d", c.settings.Runtime, exitErr.ExitCode())
		}
	}
	if lines := tail.lines(); len(lines) > 0 {
		message += "; last output: " + strings.Join(lines, " | ")
	}
	return services.Wrap(services.ErrExternalTool, "dispatch", "run pipeline", message, err)
}

func (inv Invocation) validate() error {
	switch {
	case strings.TrimSpace(inv.InputDir) == "":
		return errors.New("input directory required")
	case strings.TrimSpace(inv.OutputDir) == "":
		return errors.New("output directory required")
	case strings.TrimSpace(inv.LicensePath) == "":
		return errors.New("license path required")
	}
	return nil
}

const tailLines = 5

// lineTail keeps the last n output lines for error messages.
type lineTail struct {
	mu   sync.Mutex
	buf  []string
	size int
}

func newLineTail(size int) *lineTail {
	return &lineTail{size: size}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, line)
	if len(t.buf) > t.size {
		t.buf = t.buf[len(t.buf)-t.size:]
	}
}

func (t *lineTail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.buf...)
}
