package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateResults(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRun() error {
	if c.processCount != "" {
		n, err := strconv.Atoi(c.processCount)
		if err != nil || n <= 0 {
			return fmt.Errorf("n_procs must be a positive integer, got %q", c.processCount)
		}
	}
	if !slices.Contains([]string{PlacementInPlace, PlacementAdjacent, PlacementDerivatives}, c.Placement) {
		return fmt.Errorf("placement must be one of %s, %s, %s; got %q", PlacementInPlace, PlacementAdjacent, PlacementDerivatives, c.Placement)
	}
	if strings.ContainsAny(c.FallbackSubject, `/\_`) || c.FallbackSubject == "sub-" {
		return fmt.Errorf("fallback_subject %q must be a single sub-<label> segment", c.FallbackSubject)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if !slices.Contains([]string{RuntimeSingularity, RuntimeApptainer, RuntimeDocker}, c.Pipeline.Runtime) {
		return fmt.Errorf("pipeline.runtime must be one of %s, %s, %s; got %q", RuntimeSingularity, RuntimeApptainer, RuntimeDocker, c.Pipeline.Runtime)
	}
	if !filepath.IsAbs(c.Pipeline.LicenseMount) && !strings.HasPrefix(c.Pipeline.LicenseMount, "/") {
		return errors.New("pipeline.license_mount must be an absolute in-container path")
	}
	switch name := c.Pipeline.OutputDirName; {
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return errors.New("pipeline.output_dir_name must be a plain directory name")
	case name == WorkspaceInputDir:
		return fmt.Errorf("pipeline.output_dir_name must not be %q, the workspace staging directory", WorkspaceInputDir)
	}
	if c.Pipeline.TimeoutSeconds < 0 {
		return errors.New("pipeline.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateResults() error {
	if !slices.Contains([]string{ResultsOverwrite, ResultsAlongside, ResultsNone}, c.Results.Mode) {
		return fmt.Errorf("results.mode must be one of %s, %s, %s; got %q", ResultsOverwrite, ResultsAlongside, ResultsNone, c.Results.Mode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
