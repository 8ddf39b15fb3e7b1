package workflow_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"petdeface/internal/config"
	"petdeface/internal/staging"
	"petdeface/internal/testsupport"
	"petdeface/internal/workflow"
)

// fakePipeline imitates the container: it rewrites staged images in place or
// into the output tree depending on --placement, and drops a defacing mask
// under the derivatives directory.
type fakePipeline struct {
	t        *testing.T
	err      error
	noOutput bool
	calls    int
	binary   string
	args     []string
	// stagedFiles lists paths relative to the input dir seen at launch.
	stagedFiles []string
}

func (f *fakePipeline) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	f.calls++
	f.binary = binary
	f.args = append([]string(nil), args...)
	input, output, placement := positional(args)

	_ = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rel, _ := filepath.Rel(input, path)
			f.stagedFiles = append(f.stagedFiles, rel)
		}
		return nil
	})
	onLine("petdeface: processing " + input)

	if f.err != nil {
		onLine("petdeface: fatal error")
		return f.err
	}
	if f.noOutput {
		return nil
	}

	for _, rel := range f.stagedFiles {
		if !strings.HasSuffix(rel, ".nii.gz") {
			continue
		}
		src := filepath.Join(input, rel)
		dst := src
		if placement != config.PlacementInPlace {
			dst = filepath.Join(output, rel)
		}
		testsupport.WriteText(f.t, dst, "defaced:"+filepath.Base(rel))
		if strings.HasSuffix(rel, "_T1w.nii.gz") {
			maskDir := filepath.Join(output, "derivatives", "petdeface", filepath.Dir(filepath.Dir(rel)))
			testsupport.WriteText(f.t, filepath.Join(maskDir, "anat", "desc-defacemask_T1w.nii.gz"), "mask")
		}
	}
	return nil
}

// positional pulls the input dir, output dir, and placement out of a
// singularity-style argument list.
func positional(args []string) (string, string, string) {
	var input, output, placement string
	for i, arg := range args {
		if arg == "petdeface" && i+2 < len(args) {
			input, output = args[i+1], args[i+2]
		}
		if arg == "--placement" && i+1 < len(args) {
			placement = args[i+1]
		}
	}
	return input, output, placement
}

func envWithLicense(path string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if key == "FREESURFER_LICENSE" {
			return path, true
		}
		return "", false
	}
}

func newDriver(t *testing.T, pipeline *fakePipeline, lookup func(string) (string, bool)) *workflow.Driver {
	t.Helper()
	return workflow.NewDriver(nil,
		workflow.WithExecutor(pipeline),
		workflow.WithLookupEnv(lookup),
		workflow.WithRuntimeResolver(func(name string) (string, error) { return "/usr/bin/" + name, nil }),
		workflow.WithRunIDs(func() string { return "test-run" }),
	)
}

func assertNoWorkspaces(t *testing.T, cfg *config.Config) {
	t.Helper()
	dirs, err := staging.ListWorkspaces(cfg.ResolveStagingDir())
	if err != nil {
		t.Fatalf("list workspaces: %v", err)
	}
	if len(dirs) != 0 {
		t.Fatalf("expected no workspaces left behind, found %v", dirs)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
