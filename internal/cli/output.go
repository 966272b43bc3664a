package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"gopkg.in/yaml.v3"
)

// resolveFormat turns "auto" into pretty on a terminal and YAML otherwise.
func resolveFormat(format string, w io.Writer) string {
	if format == "" || format == FormatAuto {
		if tui.IsTerminal(w) {
			return FormatPretty
		}
		return FormatYAML
	}
	return format
}

// encode writes v to w in the requested format. Pretty output only applies
// to mappings; other values fall back to YAML.
func encode(w io.Writer, v any, format, title string) error {
	switch resolveFormat(format, w) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(v)
	case FormatPretty:
		if m, ok := v.(map[string]any); ok {
			out, err := tui.NewRenderer()(tui.TreeMarkdown(title, m))
			if err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}
			_, err = io.WriteString(w, out)
			return err
		}
		fallthrough
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}
