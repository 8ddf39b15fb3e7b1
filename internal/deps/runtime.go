package deps

import (
	"fmt"
	"strings"
)

// runtimeAlternates lists binaries that accept the same arguments as the key.
// Apptainer is the renamed Singularity project and installs either name
// depending on the distribution.
var runtimeAlternates = map[string][]string{
	"singularity": {"apptainer"},
	"apptainer":   {"singularity"},
}

// RuntimeRequirement describes the container runtime binary for runtime,
// including its compatible alternates.
func RuntimeRequirement(runtime string) Requirement {
	runtime = strings.TrimSpace(runtime)
	return Requirement{
		Name:        "Container runtime",
		Command:     runtime,
		Alternates:  runtimeAlternates[runtime],
		Description: "Runs the petdeface pipeline image",
	}
}

// CheckContainerRuntime reports the container runtime binary a run will
// execute. When the configured runtime is missing, a compatible alternate on
// PATH is reported instead and noted in Detail.
func CheckContainerRuntime(runtime string) Status {
	return Check(RuntimeRequirement(runtime))
}

// ResolveRuntime returns the executable to launch for runtime, applying the
// same fallback as CheckContainerRuntime.
func ResolveRuntime(runtime string) (string, error) {
	status := CheckContainerRuntime(runtime)
	if !status.Available {
		return "", fmt.Errorf("container runtime unavailable: %s", status.Detail)
	}
	return status.Command, nil
}
