package preflight

import (
	"petdeface/internal/config"
	"petdeface/internal/license"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Inputs optionally names the T1 and PET files to verify alongside the
// environment checks.
type Inputs struct {
	T1  string
	PET string
}

// RunAll executes all applicable preflight checks for the given config.
// Input file checks run only when the corresponding path is set.
func RunAll(cfg *config.Config, lookup license.LookupFunc, in Inputs) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, FromDeps(CheckSystemDeps(cfg))...)
	results = append(results, CheckLicense(lookup, cfg.Pipeline.LicenseEnv))
	results = append(results, CheckDirectoryCreatable("Staging directory", cfg.ResolveStagingDir()))

	if installDir, err := cfg.ResolveInstallDir(); err != nil {
		results = append(results, Result{Name: "Install directory", Detail: err.Error()})
	} else {
		results = append(results, CheckDirectoryCreatable("Install directory", installDir))
	}

	if in.T1 != "" || in.PET != "" {
		results = append(results, CheckInputs(in.T1, in.PET)...)
	}

	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
