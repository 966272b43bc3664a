package domain

import (
	"reflect"
	"sort"
)

// TreeDiff represents the changes between two resolved trees.
// Keys are slash-separated leaf locations ("model/layers").
type TreeDiff struct {
	Added   map[string]any       `json:"added,omitempty"`
	Removed map[string]any       `json:"removed,omitempty"`
	Changed map[string]ValuePair `json:"changed,omitempty"`
}

// ValuePair holds the before and after values of a changed location.
type ValuePair struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff calculates the difference between oldTree and newTree.
// Nested trees are compared key by key; any other value (including
// sequences) is compared as a whole. Returns nil when nothing changed.
func Diff(oldTree, newTree Tree) *TreeDiff {
	diff := &TreeDiff{
		Added:   make(map[string]any),
		Removed: make(map[string]any),
		Changed: make(map[string]ValuePair),
	}
	diffTrees("", oldTree, newTree, diff)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffTrees(prefix string, oldTree, newTree Tree, diff *TreeDiff) {
	// Check for Added or Modified
	for k, newVal := range newTree {
		loc := joinLocation(prefix, k)
		oldVal, exists := oldTree[k]
		if !exists {
			diff.Added[loc] = newVal
			continue
		}
		oldSub, oldIsTree := oldVal.(Tree)
		newSub, newIsTree := newVal.(Tree)
		if oldIsTree && newIsTree {
			diffTrees(loc, oldSub, newSub, diff)
			continue
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			diff.Changed[loc] = ValuePair{Old: oldVal, New: newVal}
		}
	}

	// Check for Deletions
	for k, oldVal := range oldTree {
		if _, exists := newTree[k]; !exists {
			diff.Removed[joinLocation(prefix, k)] = oldVal
		}
	}
}

func joinLocation(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// Locations returns every location touched by the diff in lexical order.
func (d *TreeDiff) Locations() []string {
	if d == nil {
		return nil
	}
	locs := make([]string, 0, len(d.Added)+len(d.Removed)+len(d.Changed))
	for k := range d.Added {
		locs = append(locs, k)
	}
	for k := range d.Removed {
		locs = append(locs, k)
	}
	for k := range d.Changed {
		locs = append(locs, k)
	}
	sort.Strings(locs)
	return locs
}

// IsEmpty checks if the diff contains any changes.
func (d *TreeDiff) IsEmpty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0)
}
