package arbor_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArbor_EndToEnd_Loam(t *testing.T) {
	paramsDir := t.TempDir()
	runsDir := t.TempDir()
	testutils.WriteSets(t, paramsDir, map[string]string{
		"base":    `{"timeout": 10, "nested": {"x": 1}}`,
		"derived": `{"@include": ["base"], "nested": {"y": 2}, "ref": "@ref:/nested/x", "experiment_name": "e2e"}`,
	})

	clock := func() time.Time { return time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC) }
	loader, err := arbor.New(paramsDir, arbor.WithRunsDir(runsDir), arbor.WithClock(clock))
	require.NoError(t, err)

	ctx := context.Background()
	sess, err := loader.Initialize(ctx, "derived")
	require.NoError(t, err)

	assert.Equal(t, domain.Tree{
		"timeout":         int64(10),
		"nested":          domain.Tree{"x": int64(1), "y": int64(2)},
		"ref":             int64(1),
		"experiment_name": "e2e",
	}, sess.Params())
	assert.Equal(t, "e2e", sess.RunName())

	require.NoError(t, sess.Log(ctx, "hello"))

	data, err := os.ReadFile(filepath.Join(runsDir, "e2e", "params.json"))
	require.NoError(t, err)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, "derived", snapshot["names"])

	logData, err := os.ReadFile(filepath.Join(runsDir, "e2e", "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "01 02 2025 - 03:04:05 hello", strings.TrimSpace(string(logData)))
}

func TestArbor_FileStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("model:\n  depth: 4\n"), 0644))

	loader, err := arbor.New(dir, arbor.WithStore(file.New(dir)), arbor.WithoutRunLog())
	require.NoError(t, err)
	assert.Nil(t, loader.RunLog())
	assert.Equal(t, filepath.Base(dir), loader.Name)

	tree, err := loader.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, domain.Tree{"model": domain.Tree{"depth": int64(4)}}, tree)

	names, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestArbor_NewRequiresDir(t *testing.T) {
	_, err := arbor.New("")
	assert.Error(t, err)
}

func TestArbor_NoNames(t *testing.T) {
	loader, err := arbor.New(t.TempDir(), arbor.WithoutRunLog())
	require.NoError(t, err)
	_, err = loader.Initialize(context.Background())
	assert.ErrorIs(t, err, arbor.ErrNoParamSetNames)
}

func TestArbor_RunLogMiddleware(t *testing.T) {
	dir := t.TempDir()
	runsDir := t.TempDir()
	testutils.WriteSets(t, dir, map[string]string{
		"secret": `{"run_name": "s", "api_token": "abc"}`,
	})

	loader, err := arbor.New(dir,
		arbor.WithStore(file.New(dir)),
		arbor.WithRunsDir(runsDir),
		arbor.WithRunLogMiddleware(middleware.NewPIIMiddleware([]string{"token"})),
	)
	require.NoError(t, err)

	sess, err := loader.Initialize(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Get("api_token"))

	data, err := os.ReadFile(filepath.Join(runsDir, "s", "params.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), middleware.Mask)
	assert.NotContains(t, string(data), "abc")
}
