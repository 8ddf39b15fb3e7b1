package staging

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"petdeface/internal/fileutil"
)

//go:embed boilerplate/dataset_description.json boilerplate/README
var boilerplate embed.FS

// boilerplateFiles maps embedded files to their names in the staging root.
var boilerplateFiles = map[string]string{
	"boilerplate/dataset_description.json": "dataset_description.json",
	"boilerplate/README":                   "README",
}

// Layout describes where a run's inputs land inside the staging tree.
type Layout struct {
	Root       string
	Subject    string
	T1Session  string
	PETSession string
}

// SubjectDir returns {root}/{subject}.
func (l Layout) SubjectDir() string {
	return filepath.Join(l.Root, l.Subject)
}

// AnatDir returns {root}/{subject}/[{session}/]anat.
func (l Layout) AnatDir() string {
	return filepath.Join(l.Root, l.Subject, l.T1Session, "anat")
}

// PETDir returns {root}/{subject}/[{session}/]pet.
func (l Layout) PETDir() string {
	return filepath.Join(l.Root, l.Subject, l.PETSession, "pet")
}

// RelativeAnatDir returns AnatDir relative to the staging root.
func (l Layout) RelativeAnatDir() string {
	return filepath.Join(l.Subject, l.T1Session, "anat")
}

// RelativePETDir returns PETDir relative to the staging root.
func (l Layout) RelativePETDir() string {
	return filepath.Join(l.Subject, l.PETSession, "pet")
}

// Inputs are the original files copied into the tree.
type Inputs struct {
	T1      string
	PET     string
	Sidecar string
}

// Staged records where each input was copied.
type Staged struct {
	Layout  Layout
	T1      string
	PET     string
	Sidecar string
}

// Build writes the boilerplate files, recreates the subject directory, and
// copies the inputs into their modality directories.
func Build(layout Layout, in Inputs) (Staged, error) {
	if strings.TrimSpace(layout.Root) == "" {
		return Staged{}, fmt.Errorf("staging root is empty")
	}
	if strings.TrimSpace(layout.Subject) == "" {
		return Staged{}, fmt.Errorf("subject is empty")
	}
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		return Staged{}, fmt.Errorf("create staging root: %w", err)
	}
	if err := writeBoilerplate(layout.Root); err != nil {
		return Staged{}, err
	}

	subjectDir := layout.SubjectDir()
	if err := os.RemoveAll(subjectDir); err != nil {
		return Staged{}, fmt.Errorf("reset subject directory: %w", err)
	}

	staged := Staged{Layout: layout}
	anatDir := layout.AnatDir()
	petDir := layout.PETDir()
	for _, dir := range []string{anatDir, petDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Staged{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	var err error
	if staged.T1, err = fileutil.CopyIntoDir(in.T1, anatDir); err != nil {
		return Staged{}, err
	}
	if staged.PET, err = fileutil.CopyIntoDir(in.PET, petDir); err != nil {
		return Staged{}, err
	}
	if staged.Sidecar, err = fileutil.CopyIntoDir(in.Sidecar, petDir); err != nil {
		return Staged{}, err
	}
	return staged, nil
}

func writeBoilerplate(root string) error {
	for src, name := range boilerplateFiles {
		data, err := boilerplate.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(root, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
