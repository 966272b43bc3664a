package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the arbor banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _ _ __| |__   ___  _ __ ", "#34d399"},
		{"  / _` | '__| '_ \\ / _ \\| '__|", "#10b981"},
		{" | (_| | |  | |_) | (_) | |   ", "#059669"},
		{"  \\__,_|_|  |_.__/ \\___/|_|   ", "#047857"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Heading returns s styled as a section heading.
func Heading(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Bold().Foreground(p.Color("#34d399")).String()
}

// Warning returns s styled as a warning.
func Warning(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Foreground(p.Color("#f59e0b")).String()
}
