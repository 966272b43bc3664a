package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunParamStoreContract runs a suite of tests to verify that a ParamStore implementation
// adheres to the defined interface contract. The store must already contain the sets
// returned by ContractFixtures.
func RunParamStoreContract(t *testing.T, store ParamStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		raw, err := store.Load(ctx, "base")
		require.NoError(t, err, "Load should not return error")
		// Numbers may come back as int64, float64 or json.Number depending on the codec,
		// so compare after the parse step normalizes them.
		set, err := domain.Parse("base", raw)
		require.NoError(t, err)
		assert.Equal(t, int64(10), set.Tree["timeout"])
		assert.Equal(t, domain.Tree{"x": int64(1)}, set.Tree["nested"])
	})

	t.Run("Load Keeps Directives", func(t *testing.T) {
		raw, err := store.Load(ctx, "derived")
		require.NoError(t, err)
		set, err := domain.Parse("derived", raw)
		require.NoError(t, err)
		assert.Equal(t, []string{"base"}, set.Includes)
		assert.Equal(t, domain.Ref{Path: "/nested/x"}, set.Tree["ref"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-set")
		assert.ErrorIs(t, err, domain.ErrParamSetNotFound)
	})

	t.Run("Load Rejects Names Outside The Store", func(t *testing.T) {
		for _, name := range []string{"", "../base", "nested/../../base", "/etc/passwd"} {
			_, err := store.Load(ctx, name)
			assert.ErrorIs(t, err, domain.ErrInvalidSetName, "name %q", name)
		}
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "base")
		assert.Contains(t, names, "derived")
	})
}

// ContractFixtures returns the parameter sets RunParamStoreContract expects to find.
func ContractFixtures() map[string]map[string]any {
	return map[string]map[string]any{
		"base": {
			"timeout": 10,
			"nested":  map[string]any{"x": 1},
		},
		"derived": {
			domain.IncludeKey: []any{"base"},
			"nested":          map[string]any{"y": 2},
			"ref":             "@ref:/nested/x",
		},
	}
}

// RunRunLogContract verifies that a RunLog records parameters and appends lines in order.
func RunRunLogContract(t *testing.T, log RunLog) {
	t.Helper()
	ctx := context.Background()
	run := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Start", func(t *testing.T) {
		params := domain.Tree{"lr": 0.5, "model": domain.Tree{"layers": int64(3)}}
		err := log.Start(ctx, run, params, []string{"base", "exp"})
		require.NoError(t, err, "Start should not return error")

		reader, ok := log.(RunReader)
		if !ok {
			return
		}
		snapshot, err := reader.Params(ctx, run)
		require.NoError(t, err)
		assert.Equal(t, "base:exp", snapshot["names"])
		recorded, ok := snapshot["params"].(map[string]any)
		require.True(t, ok, "snapshot must hold the parameters under \"params\"")
		assert.Contains(t, recorded, "lr")
		assert.Contains(t, recorded, "model")
	})

	t.Run("Append", func(t *testing.T) {
		require.NoError(t, log.Append(ctx, run, "first"))
		require.NoError(t, log.Append(ctx, run, "second"))

		reader, ok := log.(RunReader)
		if !ok {
			return
		}
		lines, err := reader.Lines(ctx, run)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, lines)
	})

	t.Run("Append Without Start", func(t *testing.T) {
		err := log.Append(ctx, run+"-nostart", "orphan")
		assert.NoError(t, err, "Append must create the run on demand")
	})
}
