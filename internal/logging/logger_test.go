package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		level   slog.Level
		enabled bool
		wantErr bool
	}{
		{"debug", slog.LevelDebug, true, false},
		{"", slog.LevelInfo, true, false},
		{"WARN", slog.LevelWarn, true, false},
		{"error", slog.LevelError, true, false},
		{"off", 0, false, false},
		{"loud", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, ok, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, ok)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, slog.LevelInfo).Error("boom", "error", errors.New("disk"))
	assert.Contains(t, buf.String(), "err=disk")
	assert.NotContains(t, buf.String(), "error=disk")
}

func TestNewWithWriter_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, slog.LevelWarn).Info("quiet")
	assert.Empty(t, buf.String())
}
