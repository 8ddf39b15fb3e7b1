package petdeface

import "strings"

// Container runtimes understood by BuildArgs.
const (
	RuntimeSingularity = "singularity"
	RuntimeApptainer   = "apptainer"
	RuntimeDocker      = "docker"
)

// BuildArgs returns the runtime arguments for one pipeline run.
//
// Singularity and Apptainer share the form
//
//	exec -e -B <license>:<mount> docker://<image> <command> <input> <output> [--n_procs N] --placement P
//
// Docker bind-mounts the license read-only and the input and output
// directories at their host paths, then relies on the image entrypoint.
// --n_procs is emitted at most once and only when a count is set.
func BuildArgs(s Settings, inv Invocation) []string {
	image := strings.TrimPrefix(strings.TrimSpace(s.Image), "docker://")

	var args []string
	switch s.Runtime {
	case RuntimeDocker:
		args = []string{
			"run", "--rm",
			"-v", inv.LicensePath + ":" + s.LicenseMount + ":ro",
			"-v", inv.InputDir + ":" + inv.InputDir,
			"-v", inv.OutputDir + ":" + inv.OutputDir,
			image,
		}
	default:
		args = []string{
			"exec", "-e",
			"-B", inv.LicensePath + ":" + s.LicenseMount,
			"docker://" + image,
		}
		if cmd := strings.TrimSpace(s.Command); cmd != "" {
			args = append(args, cmd)
		}
	}

	args = append(args, inv.InputDir, inv.OutputDir)
	if n := strings.TrimSpace(inv.ProcessCount); n != "" {
		args = append(args, "--n_procs", n)
	}
	if p := strings.TrimSpace(inv.Placement); p != "" {
		args = append(args, "--placement", p)
	}
	return args
}
