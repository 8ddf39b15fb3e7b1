package results

import (
	"fmt"
	"path/filepath"

	"petdeface/internal/bids"
	"petdeface/internal/config"
	"petdeface/internal/fileutil"
	"petdeface/internal/staging"
)

// Copy records one artifact written back next to the inputs.
type Copy struct {
	Kind        string
	Source      string
	Destination string
}

// Artifact kinds reported in Copy.Kind.
const (
	KindT1      = "t1"
	KindPET     = "pet"
	KindSidecar = "sidecar"
	KindMask    = "mask"
)

// DefacedSuffix is appended to the image stem in alongside mode.
const DefacedSuffix = "_defaced"

// MaskSuffix is appended to the PET stem for the copied mask.
const MaskSuffix = "_defacemask"

// Plan returns the copies mode calls for without touching the filesystem.
func Plan(art Artifacts, originals staging.Inputs, mode string) []Copy {
	if mode == config.ResultsNone {
		return nil
	}

	var copies []Copy
	add := func(kind, src, dst string) {
		if src == "" {
			return
		}
		copies = append(copies, Copy{Kind: kind, Source: src, Destination: dst})
	}

	switch mode {
	case config.ResultsAlongside:
		add(KindT1, art.T1, withSuffix(originals.T1, DefacedSuffix))
		add(KindPET, art.PET, withSuffix(originals.PET, DefacedSuffix))
		add(KindSidecar, art.Sidecar, bids.SidecarPath(withSuffix(originals.PET, DefacedSuffix)))
	default:
		add(KindT1, art.T1, originals.T1)
		add(KindPET, art.PET, originals.PET)
		add(KindSidecar, art.Sidecar, originals.Sidecar)
	}

	if art.Mask != "" {
		_, maskExt := bids.SplitImageExt(filepath.Base(art.Mask))
		petStem, _ := bids.SplitImageExt(filepath.Base(originals.PET))
		add(KindMask, art.Mask, filepath.Join(filepath.Dir(originals.PET), petStem+MaskSuffix+maskExt))
	}
	return copies
}

// CopyBack performs the copies from Plan, verifying each one. It stops at
// the first failure and returns the copies completed so far.
func CopyBack(art Artifacts, originals staging.Inputs, mode string) ([]Copy, error) {
	planned := Plan(art, originals, mode)
	done := make([]Copy, 0, len(planned))
	for _, c := range planned {
		if err := fileutil.CopyFileVerified(c.Source, c.Destination); err != nil {
			return done, fmt.Errorf("copy %s to %s: %w", c.Kind, c.Destination, err)
		}
		done = append(done, c)
	}
	return done, nil
}

func withSuffix(path, suffix string) string {
	stem, ext := bids.SplitImageExt(filepath.Base(path))
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}
