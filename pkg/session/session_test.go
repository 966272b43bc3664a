package session

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
}

func newTestSession(opts ...Option) (*Session, *memory.RunLog) {
	log := memory.NewRunLog()
	tree := domain.Tree{
		"experiment_name": "exp",
		"model":           domain.Tree{"depth": int64(3)},
	}
	opts = append([]Option{WithRunLog(log), WithClock(fixedClock)}, opts...)
	return New(tree, []string{"base", "exp"}, opts...), log
}

func TestSession_Accessors(t *testing.T) {
	s, _ := newTestSession()

	assert.Equal(t, "exp", s.RunName())
	assert.Equal(t, []string{"base", "exp"}, s.Names())
	assert.Equal(t, int64(3), s.Get("model", "depth"))

	depth, ok := s.View().Int("model", "depth")
	assert.True(t, ok)
	assert.Equal(t, int64(3), depth)

	v, ok := s.Lookup("model")
	require.True(t, ok)
	assert.Equal(t, domain.Tree{"depth": int64(3)}, v)
}

func TestSession_Immutable(t *testing.T) {
	s, _ := newTestSession()

	s.Params()["model"].(domain.Tree)["depth"] = int64(100)
	got, _ := s.Lookup("model")
	got.(domain.Tree)["depth"] = int64(200)
	s.Names()[0] = "changed"

	assert.Equal(t, int64(3), s.Get("model", "depth"))
	assert.Equal(t, []string{"base", "exp"}, s.Names())
}

func TestSession_GetMissingLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s, _ := newTestSession(WithLogger(logger))

	assert.Nil(t, s.Get("model", "width"))
	assert.Nil(t, s.Get("model", "depth", "deeper"))
	assert.Contains(t, buf.String(), "parameter not found")
	assert.Contains(t, buf.String(), "path=model/width")
}

func TestSession_Stamp(t *testing.T) {
	s, _ := newTestSession()
	assert.Equal(t, "03 05 2024 - 14:07:09", s.Stamp())
}

func TestSession_RecordAndLog(t *testing.T) {
	ctx := context.Background()
	s, log := newTestSession()

	require.NoError(t, s.Record(ctx))
	require.NoError(t, s.Log(ctx, "epoch 1"))

	snapshot, err := log.Params(ctx, "exp")
	require.NoError(t, err)
	assert.Equal(t, "base:exp", snapshot["names"])

	lines, err := log.Lines(ctx, "exp")
	require.NoError(t, err)
	assert.Equal(t, []string{"03 05 2024 - 14:07:09 epoch 1"}, lines)
}

func TestSession_LogSanitizesLine(t *testing.T) {
	ctx := context.Background()
	s, log := newTestSession()

	require.NoError(t, s.Log(ctx, "loss\n0.5\x1b"))
	lines, err := log.Lines(ctx, "exp")
	require.NoError(t, err)
	assert.Equal(t, []string{"03 05 2024 - 14:07:09 loss 0.5"}, lines)

	t.Setenv(EnvMaxLineSize, "4")
	assert.ErrorIs(t, s.Log(ctx, "too long"), ErrLineTooLarge)
}

func TestSession_NoRunLog(t *testing.T) {
	s := New(domain.Tree{}, nil)
	assert.Equal(t, domain.DefaultRunName, s.RunName())
	assert.ErrorIs(t, s.Record(context.Background()), ErrNoRunLog)
	assert.ErrorIs(t, s.Log(context.Background(), "x"), ErrNoRunLog)
}

func TestSession_WithRunName(t *testing.T) {
	s, _ := newTestSession(WithRunName("override/1"))
	assert.Equal(t, "override_1", s.RunName())
}

func TestSession_Snapshot(t *testing.T) {
	s, _ := newTestSession()
	snap := s.Snapshot()
	assert.Equal(t, "base:exp", snap["names"])
	assert.Equal(t, map[string]any{
		"experiment_name": "exp",
		"model":           map[string]any{"depth": int64(3)},
	}, snap["params"])
}
