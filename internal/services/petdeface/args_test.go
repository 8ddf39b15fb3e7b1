package petdeface

import (
	"slices"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func baseSettings(runtime string) Settings {
	return Settings{
		Runtime:      runtime,
		Image:        "docker://openneuropet/petdeface:latest",
		Command:      "petdeface",
		LicenseMount: "/opt/freesurfer/license.txt",
	}
}

func TestBuildArgs(t *testing.T) {
	inv := Invocation{
		InputDir:    "/ws/input",
		OutputDir:   "/ws/output",
		LicensePath: "/app/license.txt",
		Placement:   "adjacent",
	}

	tests := []struct {
		name     string
		settings Settings
		inv      Invocation
		want     []string
	}{
		{
			name:     "singularity without process count",
			settings: baseSettings(RuntimeSingularity),
			inv:      inv,
			want: []string{
				"exec", "-e", "-B", "/app/license.txt:/opt/freesurfer/license.txt",
				"docker://openneuropet/petdeface:latest", "petdeface",
				"/ws/input", "/ws/output", "--placement", "adjacent",
			},
		},
		{
			name:     "apptainer matches singularity",
			settings: baseSettings(RuntimeApptainer),
			inv:      Invocation{InputDir: "/i", OutputDir: "/o", LicensePath: "/l", ProcessCount: "2", Placement: "inplace"},
			want: []string{
				"exec", "-e", "-B", "/l:/opt/freesurfer/license.txt",
				"docker://openneuropet/petdeface:latest", "petdeface",
				"/i", "/o", "--n_procs", "2", "--placement", "inplace",
			},
		},
		{
			name:     "docker mounts directories",
			settings: baseSettings(RuntimeDocker),
			inv:      Invocation{InputDir: "/i", OutputDir: "/o", LicensePath: "/l", ProcessCount: "8", Placement: "derivatives"},
			want: []string{
				"run", "--rm",
				"-v", "/l:/opt/freesurfer/license.txt:ro",
				"-v", "/i:/i",
				"-v", "/o:/o",
				"openneuropet/petdeface:latest",
				"/i", "/o", "--n_procs", "8", "--placement", "derivatives",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildArgs(tt.settings, tt.inv)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("BuildArgs:\n got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestBuildArgsProcessCountAtMostOnce(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("n_procs appears once when set and never when empty", prop.ForAll(
		func(n int, set bool, runtime string) bool {
			count := ""
			if set {
				count = strconv.Itoa(n)
			}
			args := BuildArgs(baseSettings(runtime), Invocation{
				InputDir: "/i", OutputDir: "/o", LicensePath: "/l",
				ProcessCount: count, Placement: "inplace",
			})
			occurrences := 0
			for i, arg := range args {
				if arg == "--n_procs" {
					occurrences++
					if i+1 >= len(args) || args[i+1] != count {
						return false
					}
				}
			}
			if set {
				return occurrences == 1
			}
			return occurrences == 0
		},
		gen.IntRange(1, 256),
		gen.Bool(),
		gen.OneConstOf(RuntimeSingularity, RuntimeApptainer, RuntimeDocker),
	))

	properties.TestingRun(t)
}
