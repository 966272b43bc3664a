package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeResolver struct {
	store *memory.Store
	orch  *runtime.Orchestrator
}

func (r storeResolver) List(ctx context.Context) ([]string, error) { return r.store.List(ctx) }
func (r storeResolver) Resolve(ctx context.Context, names ...string) (domain.Tree, error) {
	return r.orch.Resolve(ctx, names)
}

func newResolver(t *testing.T, sets map[string]string) storeResolver {
	t.Helper()
	store, err := memory.NewFromJSON(sets)
	require.NoError(t, err)
	return storeResolver{store: store, orch: runtime.NewOrchestrator(store)}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	// Scenario A: every set resolves
	valid := newResolver(t, map[string]string{
		"base":    `{"a": {"b": 1}}`,
		"derived": `{"@include": ["base"], "c": "@ref:/a/b"}`,
	})
	checked, err := Validate(ctx, valid, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "derived"}, checked)

	// Scenario B: broken include, broken ref and a cycle
	broken := newResolver(t, map[string]string{
		"base":  `{"a": 1}`,
		"ghost": `{"@include": ["nowhere"]}`,
		"dang":  `{"x": "@ref:/missing"}`,
		"loop":  `{"@include": ["loop"]}`,
	})
	checked, err = Validate(ctx, broken, nil)
	require.Error(t, err)
	assert.Len(t, checked, 4)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Failures, 3)
	assert.Equal(t, "dang", verr.Failures[0].Name)
	assert.ErrorIs(t, verr.Failures[0].Err, domain.ErrReference)
	assert.Equal(t, "ghost", verr.Failures[1].Name)
	assert.ErrorIs(t, verr.Failures[1].Err, domain.ErrMissingInclude)
	assert.Equal(t, "loop", verr.Failures[2].Name)
	assert.ErrorIs(t, verr.Failures[2].Err, domain.ErrIncludeCycle)

	assert.ErrorIs(t, err, domain.ErrMissingInclude)
	assert.Contains(t, err.Error(), "found 3 errors:\n- dang: ")
}

func TestValidate_NamedSets(t *testing.T) {
	r := newResolver(t, map[string]string{"base": `{}`})

	checked, err := Validate(context.Background(), r, []string{"base", "ghost"})
	assert.Equal(t, []string{"base", "ghost"}, checked)
	assert.ErrorIs(t, err, domain.ErrParamSetNotFound)
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Validate(ctx, newResolver(t, map[string]string{"base": `{}`}), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
