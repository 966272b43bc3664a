package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TreeMarkdown renders nested parameters as a markdown outline.
// Mappings become nested bullet lists, keys are sorted.
func TreeMarkdown(title string, params map[string]any) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	writeTree(&b, params, 0)
	return b.String()
}

func writeTree(b *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			fmt.Fprintf(b, "%s- **%s**\n", indent, k)
			writeTree(b, v, depth+1)
		case []any:
			fmt.Fprintf(b, "%s- **%s**: `%s`\n", indent, k, formatList(v))
		default:
			fmt.Fprintf(b, "%s- **%s**: `%v`\n", indent, k, formatScalar(v))
		}
	}
}

func formatList(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%v", formatScalar(item))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatScalar(v any) any {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return v
	}
}
