package resolve

import "github.com/aretw0/arbor/pkg/domain"

// Merge returns a new Tree holding base overlaid with overlay.
// When both sides hold a mapping under the same key the two are merged
// recursively; in every other case the overlay value wins. Neither input is
// modified and the result shares no mappings or sequences with them.
func Merge(base, overlay domain.Tree) domain.Tree {
	out := make(domain.Tree, len(base)+len(overlay))
	for k, v := range base {
		out[k] = domain.CloneValue(v)
	}
	for k, v := range overlay {
		if baseSub, ok := base[k].(domain.Tree); ok {
			if overSub, ok := v.(domain.Tree); ok {
				out[k] = Merge(baseSub, overSub)
				continue
			}
		}
		out[k] = domain.CloneValue(v)
	}
	return out
}
