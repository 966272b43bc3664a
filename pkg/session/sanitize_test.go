package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLine_SizeLimit(t *testing.T) {
	limit := DefaultMaxLineSize

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeLine(strings.Repeat("a", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLineTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeLine_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxLineSize, "8")

	_, err := SanitizeLine("123456789")
	assert.ErrorIs(t, err, ErrLineTooLarge)

	got, err := SanitizeLine("12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", got)
}

func TestSanitizeLine_ControlChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain", "epoch 1 loss 0.5", "epoch 1 loss 0.5"},
		{"Tab Kept", "loss\t0.5", "loss\t0.5"},
		{"Newline Flattened", "first\nsecond", "first second"},
		{"CRLF Flattened", "first\r\nsecond", "first  second"},
		{"ANSI Stripped", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"NUL And BEL Stripped", "a\x00b\x07c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeLine(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeLine_InvalidUTF8(t *testing.T) {
	_, err := SanitizeLine("bad \xff byte")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
