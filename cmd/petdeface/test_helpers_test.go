package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"petdeface/internal/config"
	"petdeface/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	license    string
}

// setupCLITestEnv writes a config file pointing at per-test directories,
// stubs the container runtime on PATH, and exports a license.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "petdeface.toml")
	writeTestConfig(t, configPath, cfg)

	licensePath := testsupport.WriteLicense(t)
	t.Setenv(cfg.Pipeline.LicenseEnv, licensePath)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		license:    licensePath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runMain goes through execute so exit codes and error rendering are covered.
func runMain(t *testing.T, args []string, configPath string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	code := execute(append(flags, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"placement = %q\n\n[paths]\nstaging_dir = %q\ninstall_dir = %q\n\n[pipeline]\nruntime = %q\n\n[results]\nmode = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Placement,
		cfg.Paths.StagingDir,
		cfg.Paths.InstallDir,
		cfg.Pipeline.Runtime,
		cfg.Results.Mode,
	)
	if n := cfg.ProcessCount(); n != "" {
		content = fmt.Sprintf("n_procs = %q\n", n) + content
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode json %q: %v", raw, err)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
