package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"petdeface/internal/config"
)

// WorkspacePrefix prefixes every workspace directory name so stale cleanup
// never touches unrelated directories.
const WorkspacePrefix = "petdeface-"

// Workspace is the scoped temporary directory that owns a run.
type Workspace struct {
	root      string
	outputDir string

	once     sync.Once
	closeErr error
}

// NewWorkspace creates a workspace under parentDir. runID names the directory
// when set; otherwise a fresh UUID is used. outputName is the directory the
// pipeline writes into.
func NewWorkspace(parentDir, runID, outputName string) (*Workspace, error) {
	parentDir = strings.TrimSpace(parentDir)
	if parentDir == "" {
		parentDir = os.TempDir()
	}
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging parent: %w", err)
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		runID = uuid.NewString()
	}
	if strings.TrimSpace(outputName) == "" {
		outputName = "output"
	}

	root := filepath.Join(parentDir, WorkspacePrefix+runID)
	if err := os.Mkdir(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	ws := &Workspace{root: root, outputDir: filepath.Join(root, outputName)}
	for _, dir := range []string{ws.InputDir(), ws.outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("create workspace layout: %w", err)
		}
	}
	return ws, nil
}

// Root returns the workspace directory.
func (w *Workspace) Root() string { return w.root }

// InputDir returns the staging tree root handed to the pipeline.
func (w *Workspace) InputDir() string { return filepath.Join(w.root, config.WorkspaceInputDir) }

// OutputDir returns the pipeline output directory.
func (w *Workspace) OutputDir() string { return w.outputDir }

// Close removes the workspace and everything under it.
func (w *Workspace) Close() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		if err := os.RemoveAll(w.root); err != nil {
			w.closeErr = fmt.Errorf("remove workspace %s: %w", w.root, err)
		}
	})
	return w.closeErr
}
