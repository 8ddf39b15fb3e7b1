// Package bids extracts BIDS-style labeled entities (sub-01, ses-baseline)
// from file-system paths.
//
// Paths are split into components, each component is split on underscores
// into tokens, and every token of the form <key>-<value> becomes an entity.
// The first occurrence of a key wins, walking components root to leaf, so a
// subject directory takes precedence over the subject embedded in a filename.
// Lookup distinguishes an absent key from a key that is present with an empty
// value.
//
// The package also owns the naming rules for image companions: the JSON
// sidecar that accompanies a PET image and the split between an image stem and
// its (possibly compressed) extension.
package bids
