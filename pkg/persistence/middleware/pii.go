package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Mask replaces the value of every masked key in a recorded snapshot.
const Mask = "***"

type piiMiddleware struct {
	next     ports.RunLog
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching
// the patterns before a run's parameters are recorded. Log lines pass through.
// It panics if a pattern does not compile; use CompilePatterns to validate
// user input first.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunLog) ports.RunLog {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

// CompilePatterns reports the first pattern that is not a valid regexp.
func CompilePatterns(patternStrings []string) error {
	for _, p := range patternStrings {
		if _, err := regexp.Compile(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *piiMiddleware) Start(ctx context.Context, run string, params domain.Tree, names []string) error {
	// Clone so the session keeps the real values.
	cloned := params.Clone()
	maskTree(cloned, m.patterns)
	return m.next.Start(ctx, run, cloned, names)
}

func (m *piiMiddleware) Append(ctx context.Context, run string, line string) error {
	return m.next.Append(ctx, run, line)
}

func maskTree(t domain.Tree, patterns []*regexp.Regexp) {
	for k, v := range t {
		if matches(k, patterns) {
			t[k] = Mask
			continue
		}
		maskValue(v, patterns)
	}
}

func maskValue(v any, patterns []*regexp.Regexp) {
	switch val := v.(type) {
	case domain.Tree:
		maskTree(val, patterns)
	case []any:
		for _, item := range val {
			maskValue(item, patterns)
		}
	}
}

func matches(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
