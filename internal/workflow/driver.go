package workflow

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"petdeface/internal/config"
	"petdeface/internal/deps"
	"petdeface/internal/license"
	"petdeface/internal/logging"
	"petdeface/internal/results"
	"petdeface/internal/services/petdeface"
)

// Request is one run's immutable input.
type Request struct {
	T1     string
	PET    string
	Config *config.Config
}

// Result summarizes a run. Fields are filled as far as the run progressed.
// Unchanged lists staged images an inplace run left byte-identical.
type Result struct {
	RunID       string
	Phase       Phase
	Identifiers Identifiers
	Sidecar     string
	Workspace   string
	License     string
	Binary      string
	Args        []string
	Artifacts   results.Artifacts
	Copies      []results.Copy
	Unchanged   []string
	Duration    time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithExecutor replaces the subprocess executor used to run the pipeline.
func WithExecutor(exec petdeface.Executor) Option {
	return func(d *Driver) {
		d.exec = exec
	}
}

// WithLookupEnv replaces os.LookupEnv for the license variable.
func WithLookupEnv(lookup license.LookupFunc) Option {
	return func(d *Driver) {
		if lookup != nil {
			d.lookupEnv = lookup
		}
	}
}

// WithInstallDir overrides where the license is installed. By default the
// config's install directory is used.
func WithInstallDir(dir string) Option {
	return func(d *Driver) {
		d.installDir = strings.TrimSpace(dir)
	}
}

// WithRuntimeResolver replaces the container runtime lookup.
func WithRuntimeResolver(resolve func(string) (string, error)) Option {
	return func(d *Driver) {
		if resolve != nil {
			d.resolveRuntime = resolve
		}
	}
}

// WithRunIDs replaces the run identifier generator.
func WithRunIDs(next func() string) Option {
	return func(d *Driver) {
		if next != nil {
			d.newRunID = next
		}
	}
}

// Driver runs defacing requests.
type Driver struct {
	logger         *slog.Logger
	exec           petdeface.Executor
	lookupEnv      license.LookupFunc
	installDir     string
	resolveRuntime func(string) (string, error)
	newRunID       func() string
}

// NewDriver constructs a Driver. A nil logger discards output.
func NewDriver(logger *slog.Logger, opts ...Option) *Driver {
	d := &Driver{
		logger:         logging.NewComponentLogger(logger, "workflow"),
		resolveRuntime: deps.ResolveRuntime,
		newRunID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
