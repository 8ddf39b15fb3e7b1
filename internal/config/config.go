package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StagingDir is the parent of per-run workspaces. Empty means the system
	// temporary directory.
	StagingDir string `toml:"staging_dir" json:"staging_dir" yaml:"staging_dir"`
	// InstallDir receives the copied FreeSurfer license. Empty means the
	// directory containing the petdeface executable.
	InstallDir string `toml:"install_dir" json:"install_dir" yaml:"install_dir"`
}

// Pipeline describes how the containerized defacing pipeline is launched.
type Pipeline struct {
	Runtime        string `toml:"runtime" json:"runtime" yaml:"runtime"`
	Image          string `toml:"image" json:"image" yaml:"image"`
	Command        string `toml:"command" json:"command" yaml:"command"`
	LicenseEnv     string `toml:"license_env" json:"license_env" yaml:"license_env"`
	LicenseMount   string `toml:"license_mount" json:"license_mount" yaml:"license_mount"`
	OutputDirName  string `toml:"output_dir_name" json:"output_dir_name" yaml:"output_dir_name"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Results controls how defaced artifacts are copied back next to the inputs.
type Results struct {
	Mode string `toml:"mode" json:"mode" yaml:"mode"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format          string            `toml:"format" json:"format" yaml:"format"`
	Level           string            `toml:"level" json:"level" yaml:"level"`
	File            string            `toml:"file" json:"file" yaml:"file"`
	ComponentLevels map[string]string `toml:"component_levels" json:"component_levels" yaml:"component_levels"`
}

// Config encapsulates all configuration values for a defacing run.
//
// The top-level n_procs and placement keys keep the shape of the pipeline's
// historical config.json so existing files load unchanged. Sections:
//   - Paths: staging parent and install directory
//   - Pipeline: container runtime, image, and license wiring
//   - Results: copy-back of defaced artifacts
//   - Logging: log format, level, and optional JSON file
type Config struct {
	// NProcs is the process-count hint. Files may carry it as a number or a
	// string; use ProcessCount for the normalized value.
	NProcs          any    `toml:"n_procs" json:"n_procs" yaml:"n_procs"`
	Placement       string `toml:"placement" json:"placement" yaml:"placement"`
	FallbackSubject string `toml:"fallback_subject" json:"fallback_subject" yaml:"fallback_subject"`
	StrictSessions  bool   `toml:"strict_sessions" json:"strict_sessions" yaml:"strict_sessions"`

	Paths    Paths    `toml:"paths" json:"paths" yaml:"paths"`
	Pipeline Pipeline `toml:"pipeline" json:"pipeline" yaml:"pipeline"`
	Results  Results  `toml:"results" json:"results" yaml:"results"`
	Logging  Logging  `toml:"logging" json:"logging" yaml:"logging"`

	processCount string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultUserConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := decode(resolvedPath, file, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decode(path string, r io.Reader, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.NewDecoder(r).Decode(cfg)
	case ".yaml", ".yml":
		err := yaml.NewDecoder(r).Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	default:
		return toml.NewDecoder(r).Decode(cfg)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	candidates := make([]string, 0, len(projectConfigNames)+1)
	for _, name := range projectConfigNames {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, abs)
	}
	defaultPath, err := expandPath(defaultUserConfigPath)
	if err != nil {
		return "", false, err
	}
	candidates = append(candidates, defaultPath)

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// Normalize fills defaults and canonicalizes values on a config built in code
// rather than through Load.
func (c *Config) Normalize() error {
	return c.normalize()
}

// ProcessCount returns the normalized process-count hint, or "" when unset.
func (c *Config) ProcessCount() string {
	return c.processCount
}

// ResolveInstallDir returns the configured install directory, falling back to
// the directory holding the running executable.
func (c *Config) ResolveInstallDir() (string, error) {
	if dir := strings.TrimSpace(c.Paths.InstallDir); dir != "" {
		return dir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ResolveStagingDir returns the parent directory for run workspaces.
func (c *Config) ResolveStagingDir() string {
	if dir := strings.TrimSpace(c.Paths.StagingDir); dir != "" {
		return dir
	}
	return os.TempDir()
}

// RuntimeBinary returns the container runtime executable name.
func (c *Config) RuntimeBinary() string {
	return c.Pipeline.Runtime
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
