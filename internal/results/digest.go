package results

import (
	"fmt"
	"sort"

	"petdeface/internal/fileutil"
)

// Digests maps a file path to its SHA256 at the time of the snapshot.
type Digests map[string]string

// Snapshot hashes each path. Inplace placement rewrites the staged inputs, so
// a snapshot taken before dispatch shows whether the pipeline touched them.
func Snapshot(paths ...string) (Digests, error) {
	d := make(Digests, len(paths))
	for _, path := range paths {
		sum, err := fileutil.SHA256(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", path, err)
		}
		d[path] = sum
	}
	return d, nil
}

// Unchanged returns the snapshotted paths whose content still matches, sorted.
func (d Digests) Unchanged() ([]string, error) {
	var same []string
	for path, before := range d {
		after, err := fileutil.SHA256(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", path, err)
		}
		if after == before {
			same = append(same, path)
		}
	}
	sort.Strings(same)
	return same, nil
}
