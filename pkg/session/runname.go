package session

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// DeriveRunName picks the run name for a resolved tree.
// A non-empty string under "run_name" wins, then "experiment_name",
// then domain.DefaultRunName. The result is safe to use as a directory name.
func DeriveRunName(tree domain.Tree) string {
	for _, key := range []string{domain.KeyRunName, domain.KeyExperimentName} {
		if s, ok := tree[key].(string); ok {
			if name := SanitizeRunName(s); name != "" {
				return name
			}
		}
	}
	return domain.DefaultRunName
}

var runNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// SanitizeRunName strips surrounding whitespace and replaces path separators.
// Names made only of dots are rejected (returned empty).
func SanitizeRunName(name string) string {
	name = runNameReplacer.Replace(strings.TrimSpace(name))
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}
