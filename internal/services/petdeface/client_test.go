package petdeface_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"petdeface/internal/services"
	"petdeface/internal/services/petdeface"
)

type stubExecutor struct {
	lines  []string
	err    error
	block  bool
	calls  int
	binary string
	args   []string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	s.calls++
	s.binary = binary
	s.args = append([]string(nil), args...)
	for _, line := range s.lines {
		onLine(line)
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func defaultSettings() petdeface.Settings {
	return petdeface.Settings{
		Runtime:      "singularity",
		Image:        "openneuropet/petdeface:latest",
		Command:      "petdeface",
		LicenseMount: "/opt/freesurfer/license.txt",
	}
}

func defaultInvocation() petdeface.Invocation {
	return petdeface.Invocation{
		InputDir:     "/tmp/ws/input",
		OutputDir:    "/tmp/ws/output",
		LicensePath:  "/opt/app/license.txt",
		ProcessCount: "4",
		Placement:    "inplace",
	}
}

func TestRunPassesFixedShapeCommand(t *testing.T) {
	exec := &stubExecutor{}
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Run(context.Background(), defaultInvocation(), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected one invocation, got %d", exec.calls)
	}
	if exec.binary != "singularity" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	want := []string{
		"exec", "-e",
		"-B", "/opt/app/license.txt:/opt/freesurfer/license.txt",
		"docker://openneuropet/petdeface:latest",
		"petdeface", "/tmp/ws/input", "/tmp/ws/output",
		"--n_procs", "4",
		"--placement", "inplace",
	}
	if !equalStrings(exec.args, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", exec.args, want)
	}
}

func TestRunUsesResolvedBinary(t *testing.T) {
	exec := &stubExecutor{}
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(exec), petdeface.WithBinary("/usr/bin/apptainer"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Run(context.Background(), defaultInvocation(), nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if exec.binary != "/usr/bin/apptainer" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
}

func TestRunStreamsOutputLines(t *testing.T) {
	exec := &stubExecutor{lines: []string{"starting", "done"}}
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var got []string
	if err := client.Run(context.Background(), defaultInvocation(), func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !equalStrings(got, []string{"starting", "done"}) {
		t.Fatalf("unexpected streamed lines %v", got)
	}
}

func TestRunClassifiesFailure(t *testing.T) {
	exec := &stubExecutor{
		lines: []string{"one", "two", "three", "four", "five", "six"},
		err:   errors.New("exit status 1"),
	}
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Run(context.Background(), defaultInvocation(), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "two | three | four | five | six") {
		t.Fatalf("expected output tail in error, got %v", err)
	}
	if strings.Contains(err.Error(), "one |") {
		t.Fatalf("tail should keep only the last lines, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	settings := defaultSettings()
	settings.TimeoutSeconds = 1
	client, err := petdeface.New(settings, petdeface.WithExecutor(&stubExecutor{block: true}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Run(context.Background(), defaultInvocation(), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout message, got %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(&stubExecutor{block: true}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Run(ctx, defaultInvocation(), nil)
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("expected canceled external tool error, got %v", err)
	}
}

func TestRunRejectsIncompleteInvocation(t *testing.T) {
	exec := &stubExecutor{}
	client, err := petdeface.New(defaultSettings(), petdeface.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	inv := defaultInvocation()
	inv.LicensePath = ""

	err = client.Run(context.Background(), inv, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if exec.calls != 0 {
		t.Fatal("executor must not run for an incomplete invocation")
	}
}

func TestNewValidatesSettings(t *testing.T) {
	settings := defaultSettings()
	settings.Runtime = "podman"
	if _, err := petdeface.New(settings); err == nil {
		t.Fatal("expected unsupported runtime error")
	}
	settings = defaultSettings()
	settings.Image = " "
	if _, err := petdeface.New(settings); err == nil {
		t.Fatal("expected missing image error")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
