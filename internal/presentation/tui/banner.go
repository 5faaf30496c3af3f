package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the courier banner to w, colored for the terminal profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ___ ___  _   _ _ __(_) ___ _ __ ", "#38bdf8"},
		{"  / __/ _ \\| | | | '__| |/ _ \\ '__|", "#22d3ee"},
		{" | (_| (_) | |_| | |  | |  __/ |   ", "#2dd4bf"},
		{"  \\___\\___/ \\__,_|_|  |_|\\___|_|   ", "#34d399"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
