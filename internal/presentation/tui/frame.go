package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
)

var statusColors = map[domain.ElementStatus]string{
	domain.StatusIdle:      "#94a3b8",
	domain.StatusComparing: "#facc15",
	domain.StatusSwapping:  "#f87171",
	domain.StatusPivot:     "#c084fc",
	domain.StatusActive:    "#38bdf8",
	domain.StatusDiscarded: "#475569",
	domain.StatusFound:     "#4ade80",
	domain.StatusSorted:    "#22c55e",
}

var stateColors = map[player.State]string{
	player.StateIdle:    "#94a3b8",
	player.StateReady:   "#38bdf8",
	player.StatePlaying: "#4ade80",
	player.StatePaused:  "#facc15",
}

// FrameRenderer draws frames for a terminal: colored boards and bars,
// markdown narration and an optional pseudocode listing with the current line
// marked.
type FrameRenderer struct {
	out      *termenv.Output
	markdown func(string) (string, error)
	listing  []string
	width    int
}

// Option configures a FrameRenderer.
type Option func(*FrameRenderer)

// WithMarkdown renders narration through fn, typically NewMarkdownRenderer.
func WithMarkdown(fn func(string) (string, error)) Option {
	return func(r *FrameRenderer) {
		r.markdown = fn
	}
}

// WithListing shows lines as pseudocode under the narration.
func WithListing(lines []string) Option {
	return func(r *FrameRenderer) {
		r.listing = lines
	}
}

// WithWidth bounds bar length to the terminal width.
func WithWidth(cols int) Option {
	return func(r *FrameRenderer) {
		r.width = cols
	}
}

// NewFrameRenderer creates a renderer writing styles for out's profile.
func NewFrameRenderer(out *termenv.Output, opts ...Option) *FrameRenderer {
	r := &FrameRenderer{out: out, width: DefaultWidth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clear returns a redraw hook for runner.WithTextHandlerRedraw.
func Clear(out *termenv.Output) func(io.Writer) {
	return func(io.Writer) {
		out.ClearScreen()
	}
}

func (r *FrameRenderer) paint(s, hex string) string {
	return r.out.String(s).Foreground(r.out.Color(hex)).String()
}

// RenderFrame draws one materialized step.
func (r *FrameRenderer) RenderFrame(f player.Frame) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  step %d/%d  x%.2f %s\n",
		r.paint(strings.ToUpper(string(f.State)), stateColors[f.State]),
		f.Index+1, f.Length, f.Speed, f.Direction)
	if f.Step == nil {
		return b.String(), nil
	}
	st := f.Step

	narration, err := r.narrate(st)
	if err != nil {
		return "", err
	}
	b.WriteString(narration)
	if !strings.HasSuffix(narration, "\n") {
		b.WriteByte('\n')
	}

	if st.Snapshot != nil {
		if len(st.Snapshot.Grid) > 0 {
			r.board(&b, st)
		} else if len(st.Snapshot.Path) > 0 {
			r.path(&b, st.Snapshot.Path)
		}
	}
	return b.String(), nil
}

func (r *FrameRenderer) narrate(st *domain.Step) (string, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "**%s** %s\n", st.Kind, st.Description)
	if len(r.listing) > 0 {
		md.WriteString("\n```\n")
		for i, line := range r.listing {
			marker := "  "
			if i+1 == st.Line {
				marker = "> "
			}
			md.WriteString(marker + line + "\n")
		}
		md.WriteString("```\n")
	}
	if r.markdown == nil {
		return strings.ReplaceAll(md.String(), "**", ""), nil
	}
	return r.markdown(md.String())
}

func (r *FrameRenderer) board(b *strings.Builder, st *domain.Step) {
	for row, cells := range st.Snapshot.Grid {
		parts := make([]string, len(cells))
		for col, v := range cells {
			parts[col] = r.cell(st, row, col, v)
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
}

func (r *FrameRenderer) cell(st *domain.Step, row, col, v int) string {
	at := st.Ref != nil && st.Ref.Row == row && st.Ref.Col == col
	switch {
	case at && st.Kind == domain.KindConflict:
		return r.paint("x", statusColors[domain.StatusSwapping])
	case at && st.Kind == domain.KindTry:
		return r.paint("?", statusColors[domain.StatusComparing])
	case v != 0 && st.Kind == domain.KindSolution:
		return r.paint("Q", statusColors[domain.StatusFound])
	case v != 0:
		return r.paint("Q", statusColors[domain.StatusActive])
	}
	return r.paint(".", statusColors[domain.StatusDiscarded])
}

func (r *FrameRenderer) path(b *strings.Builder, path []int) {
	parts := make([]string, len(path))
	for i, v := range path {
		color := statusColors[domain.StatusActive]
		if i == len(path)-1 {
			color = statusColors[domain.StatusComparing]
		}
		parts[i] = r.paint(strconv.Itoa(v), color)
	}
	fmt.Fprintf(b, "path: %s\n", strings.Join(parts, " "))
}

// RenderLive draws the working array as horizontal bars colored by status.
func (r *FrameRenderer) RenderLive(f player.LiveFrame) (string, error) {
	var b strings.Builder
	state, color := "IDLE", stateColors[player.StateIdle]
	switch {
	case f.Running:
		state, color = "RUNNING", stateColors[player.StatePlaying]
	case f.Outcome != nil:
		state, color = strings.ToUpper(string(f.Outcome.Status)), stateColors[player.StatePaused]
	}
	fmt.Fprintf(&b, "%s  %s  x%.2f\n", r.paint(state, color), f.Algorithm, f.Speed)
	if f.State == nil {
		return b.String(), nil
	}

	maxVal := 1
	labelWidth := 1
	for _, v := range f.State.Values {
		maxVal = max(maxVal, v)
		labelWidth = max(labelWidth, len(strconv.Itoa(v)))
	}
	barSpace := max(r.width-labelWidth-2, 1)
	for i, v := range f.State.Values {
		status := domain.StatusIdle
		if i < len(f.State.Overlay) {
			status = f.State.Overlay[i]
		}
		n := 0
		if v > 0 {
			n = max(v*barSpace/maxVal, 1)
		}
		fmt.Fprintf(&b, "%*d %s\n", labelWidth, v, r.paint(strings.Repeat("#", n), statusColors[status]))
	}

	s := f.State.Stats
	fmt.Fprintf(&b, "comparisons %d  swaps %d  elapsed %s\n", s.Comparisons, s.Swaps, s.Elapsed.Round(time.Millisecond))
	if f.Outcome != nil && f.Outcome.Found >= 0 {
		fmt.Fprintf(&b, "found at index %d\n", f.Outcome.Found)
	}
	if f.Outcome != nil && f.Outcome.Error != "" {
		fmt.Fprintf(&b, "%s\n", r.paint(f.Outcome.Error, statusColors[domain.StatusSwapping]))
	}
	return b.String(), nil
}
