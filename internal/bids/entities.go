package bids

import (
	"path/filepath"
	"strings"
)

// Entity is a single labeled key/value pair found in a path.
type Entity struct {
	Key   string
	Value string
}

// Segment renders the entity back into its <key>-<value> form.
func (e Entity) Segment() string {
	return e.Key + "-" + e.Value
}

// Entities is the ordered result of tokenizing a path.
type Entities struct {
	items []Entity
	// ForeignSeparators reports that the path used Windows separators on a
	// host that does not, and was re-split using Windows rules.
	ForeignSeparators bool
}

// Lookup returns the value recorded for key and whether the key was present.
func (e Entities) Lookup(key string) (string, bool) {
	for _, item := range e.items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// Segment returns "<key>-<value>" for key, or "" when the key is absent.
func (e Entities) Segment(key string) string {
	value, ok := e.Lookup(key)
	if !ok {
		return ""
	}
	return Entity{Key: key, Value: value}.Segment()
}

// All returns a copy of the entities in discovery order.
func (e Entities) All() []Entity {
	out := make([]Entity, len(e.items))
	copy(out, e.items)
	return out
}

// Len reports how many distinct keys were found.
func (e Entities) Len() int {
	return len(e.items)
}

// Parse tokenizes path using the host path separator.
func Parse(path string) Entities {
	return parse(path, filepath.Separator)
}

// Extract returns the labeled segment ("sub-01") for label in path, or "" when
// the label does not occur. Labels are matched literally.
func Extract(label, path string) string {
	return Parse(path).Segment(label)
}

func parse(path string, hostSep byte) Entities {
	components, foreign := splitComponents(path, hostSep)
	result := Entities{ForeignSeparators: foreign}
	seen := make(map[string]struct{})
	for i, component := range components {
		if i == len(components)-1 {
			component = stripExtensions(component)
		}
		for _, token := range strings.Split(component, "_") {
			key, value, ok := strings.Cut(token, "-")
			if !ok || key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result.items = append(result.items, Entity{Key: key, Value: value})
		}
	}
	return result
}

// splitComponents breaks path into non-empty components. On hosts using "/"
// a component containing "\" means the caller handed over a Windows path; it is
// then re-split with Windows rules and the second return value is true.
func splitComponents(path string, hostSep byte) ([]string, bool) {
	if hostSep == '\\' {
		return windowsComponents(path), false
	}
	parts := splitOn(path, func(r rune) bool { return r == rune(hostSep) })
	for _, part := range parts {
		if strings.ContainsRune(part, '\\') {
			return windowsComponents(path), true
		}
	}
	return parts, false
}

func windowsComponents(path string) []string {
	parts := splitOn(path, func(r rune) bool { return r == '\\' || r == '/' })
	if len(parts) > 0 && isDriveLetter(parts[0]) {
		parts = parts[1:]
	}
	return parts
}

func splitOn(path string, sep func(rune) bool) []string {
	return strings.FieldsFunc(path, sep)
}

func isDriveLetter(component string) bool {
	if len(component) != 2 || component[1] != ':' {
		return false
	}
	c := component[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// stripExtensions drops everything from the first "." of the last token, so
// "sub-01_ses-02_pet.nii.gz" keeps its entities while "sub-01.nii.gz" yields
// "sub-01".
func stripExtensions(component string) string {
	lastToken := strings.LastIndexByte(component, '_') + 1
	if dot := strings.IndexByte(component[lastToken:], '.'); dot >= 0 {
		return component[:lastToken+dot]
	}
	return component
}
