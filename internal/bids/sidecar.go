package bids

import (
	"path/filepath"
	"strings"
)

const compressedExt = ".gz"

// SidecarPath returns the JSON sidecar expected next to an image: a trailing
// ".gz" is stripped and the remaining extension is replaced with ".json".
func SidecarPath(imagePath string) string {
	base := imagePath
	if strings.EqualFold(filepath.Ext(base), compressedExt) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// SplitImageExt splits a file name into stem and extension, treating a
// compressed double extension such as ".nii.gz" as one unit.
func SplitImageExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, compressedExt) {
		inner := filepath.Ext(strings.TrimSuffix(name, ext))
		ext = inner + ext
	}
	return strings.TrimSuffix(name, ext), ext
}
