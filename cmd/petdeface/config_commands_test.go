package main

import (
	"os"
	"path/filepath"
	"testing"

	"petdeface/internal/config"
	"petdeface/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample config: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadPlacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"placement": "sideways"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	code, _, stderr := runMain(t, []string{"config", "validate"}, path)
	if code != 2 {
		t.Fatalf("expected configuration exit code, got %d", code)
	}
	requireContains(t, stderr, "placement")
}

func TestConfigValidateEffectiveRoundTrips(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithProcessCount(2))

	out, _, err := runCLI(t, []string{"config", "validate", "--effective"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate --effective: %v", err)
	}
	requireContains(t, out, "placement = 'inplace'")

	path := filepath.Join(t.TempDir(), "effective.toml")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatalf("write effective config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload effective config: %v", err)
	}
	if cfg.ProcessCount() != "2" || cfg.Paths.StagingDir != env.cfg.Paths.StagingDir {
		t.Fatalf("effective config did not round trip: n_procs=%q staging=%q", cfg.ProcessCount(), cfg.Paths.StagingDir)
	}
}
