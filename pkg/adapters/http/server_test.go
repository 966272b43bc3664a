package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	runLog  *memory.RunLog
}

func newFixture(t *testing.T, withSession bool) fixture {
	t.Helper()
	store, err := memory.NewFromJSON(map[string]string{
		"base":    `{"timeout": 10, "nested": {"x": 1}, "experiment_name": "web"}`,
		"derived": `{"@include": ["base"], "nested": {"y": 2}, "ref": "@ref:/nested/x"}`,
		"broken":  `{"ref": "@ref:/nowhere"}`,
	})
	require.NoError(t, err)

	runLog := memory.NewRunLog()
	clock := func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }
	orch := runtime.NewOrchestrator(store, runtime.WithRunLog(runLog), runtime.WithClock(clock))
	loader := &orchestratorLoader{store: store, orch: orch}

	opts := []Option{WithMetrics(observability.NewMetrics(nil).Handler())}
	if withSession {
		sess, err := orch.Initialize(context.Background(), []string{"derived"})
		require.NoError(t, err)
		opts = append(opts, WithSession(sess))
	}
	return fixture{handler: NewHandler(loader, opts...), runLog: runLog}
}

type orchestratorLoader struct {
	store *memory.Store
	orch  *runtime.Orchestrator
}

func (l *orchestratorLoader) List(ctx context.Context) ([]string, error) { return l.store.List(ctx) }
func (l *orchestratorLoader) Resolve(ctx context.Context, names ...string) (domain.Tree, error) {
	return l.orch.Resolve(ctx, names)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, false)
	w := do(t, f.handler, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_ListSets(t *testing.T) {
	f := newFixture(t, false)
	w := do(t, f.handler, "GET", "/sets", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["base","broken","derived"]`, w.Body.String())
}

func TestServer_Resolve(t *testing.T) {
	f := newFixture(t, false)

	w := do(t, f.handler, "GET", "/resolve?names=derived", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"timeout":10,"nested":{"x":1,"y":2},"ref":1,"experiment_name":"web"}`, w.Body.String())

	w = do(t, f.handler, "GET", "/resolve", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, f.handler, "GET", "/resolve?names=broken", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "nowhere")
}

func TestServer_ResolveRejectsEscapingNames(t *testing.T) {
	f := newFixture(t, false)

	for _, target := range []string{"/resolve?names=../secret", "/resolve?names=/etc/passwd"} {
		w := do(t, f.handler, "GET", target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), "invalid parameter set name")
	}
}

func TestServer_RunWithoutSession(t *testing.T) {
	f := newFixture(t, false)
	w := do(t, f.handler, "GET", "/run", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Run(t *testing.T) {
	f := newFixture(t, true)

	w := do(t, f.handler, "GET", "/run", "")
	require.Equal(t, http.StatusOK, w.Code)
	var run map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "web", run["run"])
	assert.Equal(t, []any{"derived"}, run["names"])
	assert.Equal(t, "06 01 2025 - 12:00:00", run["stamp"])

	w = do(t, f.handler, "GET", "/run/params/nested/y", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", strings.TrimSpace(w.Body.String()))

	w = do(t, f.handler, "GET", "/run/params/nested", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"x":1,"y":2}`, w.Body.String())

	w = do(t, f.handler, "GET", "/run/params/nested/zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, f.handler, "GET", "/run/params", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ref":1`)
}

func TestServer_AppendLog(t *testing.T) {
	f := newFixture(t, true)

	w := do(t, f.handler, "POST", "/run/log", `{"line":"epoch 1"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	lines, err := f.runLog.Lines(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"06 01 2025 - 12:00:00 epoch 1"}, lines)

	w = do(t, f.handler, "POST", "/run/log", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Setenv(session.EnvMaxLineSize, "4")
	w = do(t, f.handler, "POST", "/run/log", `{"line":"too long"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t, false)
	w := do(t, f.handler, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_NoRunLog(t *testing.T) {
	sess := session.New(nil, []string{"x"})
	h := NewHandler(&orchestratorLoader{store: memory.NewStore(nil)}, WithSession(sess))
	w := do(t, h, "POST", "/run/log", `{"line":"x"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
