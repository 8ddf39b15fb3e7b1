package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWorkspaceLayout(t *testing.T) {
	parent := t.TempDir()

	ws, err := NewWorkspace(parent, "run-1", "output")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	if ws.Root() != filepath.Join(parent, WorkspacePrefix+"run-1") {
		t.Fatalf("unexpected root %q", ws.Root())
	}
	for _, dir := range []string{ws.InputDir(), ws.OutputDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if filepath.Dir(ws.InputDir()) != ws.Root() || filepath.Dir(ws.OutputDir()) != ws.Root() {
		t.Fatal("input and output must live inside the workspace")
	}
}

func TestNewWorkspaceGeneratesName(t *testing.T) {
	parent := t.TempDir()

	a, err := NewWorkspace(parent, "", "")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer a.Close()
	b, err := NewWorkspace(parent, "", "")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer b.Close()

	if a.Root() == b.Root() {
		t.Fatal("expected distinct workspace directories")
	}
	if !strings.HasPrefix(filepath.Base(a.Root()), WorkspacePrefix) {
		t.Fatalf("missing prefix on %q", a.Root())
	}
	if filepath.Base(a.OutputDir()) != "output" {
		t.Fatalf("expected default output dir name, got %q", a.OutputDir())
	}
}

func TestNewWorkspaceRejectsDuplicateRunID(t *testing.T) {
	parent := t.TempDir()
	ws, err := NewWorkspace(parent, "dup", "output")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	defer ws.Close()

	if _, err := NewWorkspace(parent, "dup", "output"); err == nil {
		t.Fatal("expected error when the workspace already exists")
	}
}

func TestWorkspaceCloseRemovesTree(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), "run-2", "output")
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws.OutputDir(), "result.nii"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Fatalf("workspace still present: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	var nilWS *Workspace
	if err := nilWS.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
