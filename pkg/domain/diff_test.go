package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      Tree
		new      Tree
		wantDiff *TreeDiff // nil means no changes
	}{
		{
			name:     "No Changes",
			old:      Tree{"a": int64(1), "nested": Tree{"x": "y"}},
			new:      Tree{"a": int64(1), "nested": Tree{"x": "y"}},
			wantDiff: nil,
		},
		{
			name: "Nested Change",
			old:  Tree{"model": Tree{"layers": int64(2), "act": "relu"}},
			new:  Tree{"model": Tree{"layers": int64(4), "act": "relu"}},
			wantDiff: &TreeDiff{
				Added:   map[string]any{},
				Removed: map[string]any{},
				Changed: map[string]ValuePair{"model/layers": {Old: int64(2), New: int64(4)}},
			},
		},
		{
			name: "Added And Removed",
			old:  Tree{"a": int64(1)},
			new:  Tree{"b": Tree{"c": true}},
			wantDiff: &TreeDiff{
				Added:   map[string]any{"b": Tree{"c": true}},
				Removed: map[string]any{"a": int64(1)},
				Changed: map[string]ValuePair{},
			},
		},
		{
			name: "Type Change Is A Change",
			old:  Tree{"a": Tree{"b": int64(1)}},
			new:  Tree{"a": "flat"},
			wantDiff: &TreeDiff{
				Added:   map[string]any{},
				Removed: map[string]any{},
				Changed: map[string]ValuePair{"a": {Old: Tree{"b": int64(1)}, New: "flat"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestTreeDiff_Locations(t *testing.T) {
	d := Diff(Tree{"z": int64(1), "a": Tree{"b": int64(1)}}, Tree{"a": Tree{"b": int64(2)}, "m": "new"})
	assert.Equal(t, []string{"a/b", "m", "z"}, d.Locations())
	assert.False(t, d.IsEmpty())

	var empty *TreeDiff
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Locations())
}
