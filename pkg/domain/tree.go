package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Tree is a parameter mapping. Values are scalars (string, int64, float64,
// bool, nil), sequences ([]any), nested Trees or Refs.
type Tree map[string]any

// Ref is a cross-reference to another location of the resolved tree.
// Path uses "/" separators; a leading "/" starts at the root and each
// leading "../" climbs one level.
type Ref struct {
	Path string
}

func (r Ref) String() string { return RefPrefix + r.Path }

// MarshalJSON keeps unresolved references readable in snapshots.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ParamSet is a parsed parameter document: its own keys plus the names it inherits from.
type ParamSet struct {
	Name     string
	Includes []string
	Tree     Tree
}

// Keys returns the keys of t in lexical order.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of t. Sequences are copied; Refs and scalars are values.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies trees and sequences and returns other values as-is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case Tree:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Parse turns a raw decoded document into a ParamSet.
// The @include directive is lifted out of the tree and string values that
// start with RefPrefix become Refs. Nested maps become Trees and numbers are
// normalized to int64 or float64.
func Parse(name string, raw map[string]any) (*ParamSet, error) {
	set := &ParamSet{Name: name}
	if raw == nil {
		set.Tree = Tree{}
		return set, nil
	}

	if inc, ok := raw[IncludeKey]; ok {
		includes, err := parseIncludes(inc)
		if err != nil {
			return nil, fmt.Errorf("parameter set %q: %w", name, err)
		}
		set.Includes = includes
	}

	tree, err := parseMapping(raw, true, true)
	if err != nil {
		return nil, fmt.Errorf("parameter set %q: %w", name, err)
	}
	set.Tree = tree
	return set, nil
}

func parseIncludes(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		names := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T, expected string", ErrInvalidInclude, i, item)
			}
			names = append(names, s)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("%w: expected list of names, got %T", ErrInvalidInclude, v)
	}
}

// parseMapping converts raw into a Tree. Markers only become Refs when refs
// is set; mappings nested in sequences keep their marker strings verbatim
// because reference resolution never descends into sequences.
func parseMapping(raw map[string]any, root, refs bool) (Tree, error) {
	out := make(Tree, len(raw))
	for k, v := range raw {
		if root && k == IncludeKey {
			continue
		}
		if s, ok := v.(string); ok && refs && strings.HasPrefix(s, RefPrefix) {
			out[k] = Ref{Path: s[len(RefPrefix):]}
			continue
		}
		parsed, err := parseValue(v, refs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = parsed
	}
	return out, nil
}

func parseValue(v any, refs bool) (any, error) {
	switch val := v.(type) {
	case Tree:
		return parseMapping(val, false, refs)
	case map[string]any:
		return parseMapping(val, false, refs)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprintf("%v", k)] = item
		}
		return parseMapping(m, false, refs)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			parsed, err := parseValue(item, false)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = parsed
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return f, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return float64(val), nil
		}
		return int64(val), nil
	case float32:
		return float64(val), nil
	default:
		return v, nil
	}
}

// Plain converts t into nested map[string]any values suitable for encoders.
// Unresolved Refs are rendered back to their marker string.
func (t Tree) Plain() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case Tree:
		return val.Plain()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	case Ref:
		return val.String()
	default:
		return v
	}
}

// Snapshot is the document recorded for a run: the ":"-joined set names
// and the resolved parameters.
func Snapshot(params Tree, names []string) map[string]any {
	return map[string]any{
		"names":  strings.Join(names, ":"),
		"params": params.Plain(),
	}
}
