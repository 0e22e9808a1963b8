package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stepviz banner and version to out.
func PrintBanner(out *termenv.Output, version string) {
	lines := []struct {
		text, color string
	}{
		{"      _                  _     ", "#818cf8"},
		{"  ___| |_ ___ _ ____   _(_)____", "#a78bfa"},
		{" / __| __/ _ \\ '_ \\ \\ / / |_  /", "#c084fc"},
		{" \\__ \\ ||  __/ |_) \\ V /| |/ / ", "#e879f9"},
		{" |___/\\__\\___| .__/ \\_/ |_/___|", "#f472b6"},
		{"             |_|               ", "#fb7185"},
	}
	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintf(out, "%s\n\n", out.String("  v"+version).Faint())
}

// NewOutput wraps w for styled output. Color support is detected from w.
func NewOutput(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return termenv.NewOutput(w, opts...)
}
