package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"petdeface/internal/config"
	"petdeface/internal/fileutil"
	"petdeface/internal/services"
	"petdeface/internal/staging"
)

const (
	derivativesDir = "derivatives"
	pipelineDir    = "petdeface"
	maskMarker     = "defacemask"
	legacyMaskName = "defacing_mask.nii.gz"
)

// Artifacts are the pipeline outputs for one run. Sidecar and Mask are empty
// when the pipeline did not produce them.
type Artifacts struct {
	T1      string
	PET     string
	Sidecar string
	Mask    string
}

// Locate finds the defaced images, the PET sidecar, and the defacing mask.
// A missing defaced T1 or PET is a validation error. Under inplace placement
// the images are the staged inputs and always exist; callers compare a
// Snapshot taken before dispatch to tell whether the pipeline rewrote them.
func Locate(staged staging.Staged, outputDir, placement string) (Artifacts, error) {
	layout := staged.Layout
	var art Artifacts

	if placement == config.PlacementInPlace {
		art.T1 = staged.T1
		art.PET = staged.PET
		art.Sidecar = staged.Sidecar
	} else {
		art.T1 = filepath.Join(outputDir, layout.RelativeAnatDir(), filepath.Base(staged.T1))
		art.PET = filepath.Join(outputDir, layout.RelativePETDir(), filepath.Base(staged.PET))
		art.Sidecar = filepath.Join(outputDir, layout.RelativePETDir(), filepath.Base(staged.Sidecar))
	}

	if !fileutil.Exists(art.T1) {
		return Artifacts{}, services.Wrap(services.ErrValidation, "collect", "locate outputs",
			fmt.Sprintf("pipeline produced no defaced T1 at %s", art.T1), nil)
	}
	if !fileutil.Exists(art.PET) {
		return Artifacts{}, services.Wrap(services.ErrValidation, "collect", "locate outputs",
			fmt.Sprintf("pipeline produced no defaced PET at %s", art.PET), nil)
	}
	if !fileutil.Exists(art.Sidecar) {
		art.Sidecar = ""
	}

	roots := []string{filepath.Join(outputDir, derivativesDir, pipelineDir)}
	if placement == config.PlacementInPlace {
		roots = append(roots, filepath.Join(layout.Root, derivativesDir, pipelineDir))
	}
	for _, root := range roots {
		mask, err := findMask(maskSearchDir(root, layout))
		if err != nil {
			return Artifacts{}, fmt.Errorf("search defacing mask: %w", err)
		}
		if mask != "" {
			art.Mask = mask
			break
		}
	}
	return art, nil
}

// maskSearchDir narrows the search to the PET session directory when it
// exists, then the subject directory, then the derivatives root.
func maskSearchDir(root string, layout staging.Layout) string {
	candidates := []string{
		filepath.Join(root, layout.Subject, layout.PETSession),
		filepath.Join(root, layout.Subject),
		root,
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// findMask returns the first mask image under dir in lexical walk order.
func findMask(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsMaskName(d.Name()) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return found, nil
}

// IsMaskName reports whether name looks like a defacing mask image. JSON
// sidecars of masks are not masks.
func IsMaskName(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".json") {
		return false
	}
	return lower == legacyMaskName || strings.Contains(lower, maskMarker)
}
