package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxLineSize is 4KB
	DefaultMaxLineSize = 4096
	// EnvMaxLineSize is the environment variable to override the default
	EnvMaxLineSize = "ARBOR_MAX_LINE_SIZE"
)

var (
	ErrLineTooLarge = errors.New("log line exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("log line contains invalid UTF-8 sequences")
)

// SanitizeLine prepares a message for the run log: it enforces the size
// limit, validates UTF-8, turns line breaks into spaces so the entry stays on
// one line and strips the remaining control characters except tab.
func SanitizeLine(line string) (string, error) {
	limit := maxLineSize()
	if len(line) > limit {
		// Rejected rather than truncated so the log never holds partial entries.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrLineTooLarge, len(line), limit)
	}

	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to rewrite.
	clean := true
	for _, r := range line {
		if unicode.IsControl(r) && r != '\t' {
			clean = false
			break
		}
	}
	if clean {
		return line, nil
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == '\t' || !unicode.IsControl(r):
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func maxLineSize() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}
