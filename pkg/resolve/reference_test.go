package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refTree(t *testing.T, raw map[string]any) domain.Tree {
	t.Helper()
	return parse(t, "test", raw).Tree
}

func TestReferences_Paths(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		get  func(domain.Tree) any
		want any
	}{
		{
			name: "Absolute",
			raw:  map[string]any{"a": map[string]any{"b": 1}, "c": "@ref:/a/b"},
			get:  func(t domain.Tree) any { return t["c"] },
			want: int64(1),
		},
		{
			name: "Sibling",
			raw:  map[string]any{"a": 1, "b": "@ref:a"},
			get:  func(t domain.Tree) any { return t["b"] },
			want: int64(1),
		},
		{
			name: "Parent",
			raw:  map[string]any{"a": map[string]any{"b": 1, "c": "@ref:../a/b"}},
			get:  func(t domain.Tree) any { return t["a"].(domain.Tree)["c"] },
			want: int64(1),
		},
		{
			name: "Two Levels Up",
			raw: map[string]any{
				"top": "value",
				"x":   map[string]any{"y": map[string]any{"z": "@ref:../../top"}},
			},
			get:  func(t domain.Tree) any { return t["x"].(domain.Tree)["y"].(domain.Tree)["z"] },
			want: "value",
		},
		{
			name: "Whole Mapping",
			raw:  map[string]any{"model": map[string]any{"lr": 0.1}, "copy": "@ref:/model"},
			get:  func(t domain.Tree) any { return t["copy"] },
			want: domain.Tree{"lr": 0.1},
		},
		{
			name: "Absolute From Nested",
			raw: map[string]any{
				"shared": map[string]any{"seed": 7},
				"train":  map[string]any{"seed": "@ref:/shared/seed"},
			},
			get:  func(t domain.Tree) any { return t["train"].(domain.Tree)["seed"] },
			want: int64(7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := References(refTree(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.get(got))
		})
	}
}

func TestReferences_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		kind error
	}{
		{
			name: "Root Escape",
			raw:  map[string]any{"x": "@ref:../y"},
			kind: domain.ErrRootEscape,
		},
		{
			name: "Root Escape From Nested",
			raw:  map[string]any{"a": map[string]any{"x": "@ref:../../y"}},
			kind: domain.ErrRootEscape,
		},
		{
			name: "Missing Key",
			raw:  map[string]any{"a": map[string]any{}, "x": "@ref:/a/missing"},
			kind: domain.ErrUnresolvedReference,
		},
		{
			name: "Missing Head",
			raw:  map[string]any{"x": "@ref:/ghost/b"},
			kind: domain.ErrUnresolvedReference,
		},
		{
			name: "Through Scalar",
			raw:  map[string]any{"a": 5, "x": "@ref:/a/b"},
			kind: domain.ErrTypeMismatch,
		},
		{
			name: "Self",
			raw:  map[string]any{"a": "@ref:a"},
			kind: domain.ErrReferenceCycle,
		},
		{
			name: "Mutual",
			raw:  map[string]any{"a": "@ref:b", "b": "@ref:a"},
			kind: domain.ErrReferenceCycle,
		},
		{
			name: "Ancestor",
			raw:  map[string]any{"a": map[string]any{"loop": "@ref:/a"}},
			kind: domain.ErrReferenceCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := References(refTree(t, tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, domain.ErrReference)

			var refErr *domain.ReferenceError
			assert.True(t, errors.As(err, &refErr))
		})
	}
}

func TestReferences_ErrorLocation(t *testing.T) {
	_, err := References(refTree(t, map[string]any{
		"model": map[string]any{"lr": "@ref:/optim/lr"},
	}))

	var refErr *domain.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "model/lr", refErr.Location)
	assert.Equal(t, "/optim/lr", refErr.Path)
	assert.Equal(t, "optim", refErr.Key)
}

func TestReferences_ChainsInAnyOrder(t *testing.T) {
	// "a" sorts first, so its target is still a marker when it is reached.
	tree := refTree(t, map[string]any{
		"a": "@ref:/z/b",
		"z": map[string]any{"b": "@ref:c", "c": "end"},
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.Equal(t, "end", got["a"])
	assert.Equal(t, "end", got["z"].(domain.Tree)["b"])
}

func TestReferences_TargetResolvedFromOwnPosition(t *testing.T) {
	// The relative marker under /inner must resolve against /inner,
	// not against the mapping of the marker that pointed at it.
	tree := refTree(t, map[string]any{
		"alias": "@ref:/inner/v",
		"inner": map[string]any{"v": "@ref:w", "w": "inner-w"},
		"w":     "root-w",
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.Equal(t, "inner-w", got["alias"])
}

func TestReferences_AliasedMappingResolvesCanonically(t *testing.T) {
	tree := refTree(t, map[string]any{
		"a":   "@ref:/src",
		"src": map[string]any{"x": "@ref:../val"},
		"val": 3,
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got["src"].(domain.Tree)["x"])
	assert.Equal(t, int64(3), got["a"].(domain.Tree)["x"])
}

func TestReferences_SlashInKeyIsNotANestedPath(t *testing.T) {
	// "p" > "q/r" and "p/q" > "r" share the same joined location.
	tree := refTree(t, map[string]any{
		"p":   map[string]any{"q/r": "@ref:/v"},
		"p/q": map[string]any{"r": map[string]any{"k": "@ref:/v"}},
		"v":   1,
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got["p"].(domain.Tree)["q/r"])
	assert.Equal(t, int64(1), got["p/q"].(domain.Tree)["r"].(domain.Tree)["k"])
	assert.False(t, containsRef(got))
}

func TestReferences_ParentAfterAliasedMapping(t *testing.T) {
	// "../" after descending through p/q climbs back to p, not to the root
	// where the aliased mapping lives.
	tree := refTree(t, map[string]any{
		"p":   map[string]any{"q": "@ref:/src", "x": "p-x"},
		"src": map[string]any{"y": 1},
		"x":   "root-x",
		"r":   "@ref:/p/q/../x",
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.Equal(t, "p-x", got["r"])
}

func TestReferences_SequencesUntouched(t *testing.T) {
	tree := refTree(t, map[string]any{
		"list": []any{"@ref:/x", map[string]any{"k": "@ref:/x"}},
		"x":    1,
	})

	got, err := References(tree)
	require.NoError(t, err)
	list := got["list"].([]any)
	assert.Equal(t, "@ref:/x", list[0])
	assert.Equal(t, domain.Tree{"k": "@ref:/x"}, list[1])
}

func TestReferences_NoRefsLeft(t *testing.T) {
	tree := refTree(t, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": "@ref:/d"}},
		"d": "@ref:/e",
		"e": []any{1, 2},
	})

	got, err := References(tree)
	require.NoError(t, err)
	assert.False(t, containsRef(got))
	assert.Equal(t, []any{int64(1), int64(2)}, got["a"].(domain.Tree)["b"].(domain.Tree)["c"])
}

func TestReferences_HooksFire(t *testing.T) {
	var seen []string
	r := NewResolver(nil, WithHooks(domain.LifecycleHooks{
		OnReference: func(ctx context.Context, e *domain.ReferenceEvent) {
			seen = append(seen, e.Location+"="+e.Path)
		},
	}))

	_, err := r.References(context.Background(), refTree(t, map[string]any{
		"a": "@ref:b",
		"b": 1,
		"n": map[string]any{"c": "@ref:/b"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a=b", "n/c=/b"}, seen)
}

func TestReferences_Nil(t *testing.T) {
	got, err := References(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func containsRef(v any) bool {
	switch val := v.(type) {
	case domain.Ref:
		return true
	case domain.Tree:
		for _, item := range val {
			if containsRef(item) {
				return true
			}
		}
	}
	return false
}
