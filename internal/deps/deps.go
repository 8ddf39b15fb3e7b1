package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary a run relies on. Alternates are
// tried in order when Command is not on PATH.
type Requirement struct {
	Name        string
	Command     string
	Alternates  []string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency. Command holds the resolved
// executable path when the dependency is available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check resolves a single requirement against PATH.
func Check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	if resolved, err := exec.LookPath(cmd); err == nil {
		status.Command = resolved
		status.Available = true
		return status
	}
	for _, alt := range req.Alternates {
		if resolved, err := exec.LookPath(alt); err == nil {
			status.Command = resolved
			status.Available = true
			status.Detail = fmt.Sprintf("%q not found; using compatible %q", cmd, alt)
			return status
		}
	}
	status.Detail = fmt.Sprintf("binary %q not found", cmd)
	return status
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}
