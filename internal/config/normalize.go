package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeProcessCount(); err != nil {
		return err
	}
	c.Placement = strings.ToLower(strings.TrimSpace(c.Placement))
	if c.Placement == "" {
		c.Placement = defaultPlacement
	}
	c.FallbackSubject = strings.TrimSpace(c.FallbackSubject)
	if c.FallbackSubject == "" {
		c.FallbackSubject = defaultFallbackSubject
	}
	if !strings.HasPrefix(c.FallbackSubject, "sub-") {
		c.FallbackSubject = "sub-" + c.FallbackSubject
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.Results.Mode = strings.ToLower(strings.TrimSpace(c.Results.Mode))
	if c.Results.Mode == "" {
		c.Results.Mode = defaultResultsMode
	}
	return c.normalizeLogging()
}

// normalizeProcessCount accepts the numeric or string forms produced by the
// TOML, JSON, and YAML decoders.
func (c *Config) normalizeProcessCount() error {
	switch v := c.NProcs.(type) {
	case nil:
		c.processCount = ""
	case string:
		c.processCount = strings.TrimSpace(v)
	case int:
		c.processCount = strconv.Itoa(v)
	case int64:
		c.processCount = strconv.FormatInt(v, 10)
	case uint64:
		c.processCount = strconv.FormatUint(v, 10)
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("n_procs: %v is not a whole number", v)
		}
		c.processCount = strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Errorf("n_procs: unsupported value %v (%T)", v, v)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.InstallDir, err = expandPath(strings.TrimSpace(c.Paths.InstallDir)); err != nil {
		return fmt.Errorf("paths.install_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	defaults := Default().Pipeline
	c.Pipeline.Runtime = strings.ToLower(strings.TrimSpace(c.Pipeline.Runtime))
	if c.Pipeline.Runtime == "" {
		c.Pipeline.Runtime = defaults.Runtime
	}
	c.Pipeline.Image = strings.TrimSpace(c.Pipeline.Image)
	if c.Pipeline.Image == "" {
		c.Pipeline.Image = defaults.Image
	}
	c.Pipeline.Image = strings.TrimPrefix(c.Pipeline.Image, "docker://")
	c.Pipeline.Command = strings.TrimSpace(c.Pipeline.Command)
	if c.Pipeline.Command == "" {
		c.Pipeline.Command = defaults.Command
	}
	c.Pipeline.LicenseEnv = strings.TrimSpace(c.Pipeline.LicenseEnv)
	if c.Pipeline.LicenseEnv == "" {
		c.Pipeline.LicenseEnv = defaults.LicenseEnv
	}
	c.Pipeline.LicenseMount = strings.TrimSpace(c.Pipeline.LicenseMount)
	if c.Pipeline.LicenseMount == "" {
		c.Pipeline.LicenseMount = defaults.LicenseMount
	}
	c.Pipeline.OutputDirName = strings.TrimSpace(c.Pipeline.OutputDirName)
	if c.Pipeline.OutputDirName == "" {
		c.Pipeline.OutputDirName = defaults.OutputDirName
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
