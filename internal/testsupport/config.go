package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"petdeface/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config seeded with unique temp directories
// per test. It applies any provided options before normalizing.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.InstallDir = filepath.Join(base, "install")
	if err := os.MkdirAll(cfgVal.Paths.InstallDir, 0o755); err != nil {
		t.Fatalf("mkdir install dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return builder.cfg
}

// WithProcessCount sets the n_procs hint on the test config.
func WithProcessCount(n any) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.NProcs = n
	}
}

// WithPlacement overrides the placement mode on the test config.
func WithPlacement(placement string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Placement = placement
	}
}

// WithResultsMode overrides the copy-back mode on the test config.
func WithResultsMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Results.Mode = mode
	}
}

// WithStrictSessions makes session mismatches fatal.
func WithStrictSessions() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.StrictSessions = true
	}
}

// WithRuntime overrides the container runtime on the test config.
func WithRuntime(runtime string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Runtime = runtime
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default container runtime is
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{config.RuntimeSingularity}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
