package tui_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepviz/internal/presentation/tui"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
)

func plainOutput(buf *bytes.Buffer) *termenv.Output {
	return tui.NewOutput(buf, termenv.WithProfile(termenv.Ascii))
}

func TestFrameRenderer_Board(t *testing.T) {
	r := tui.NewFrameRenderer(plainOutput(&bytes.Buffer{}),
		tui.WithListing([]string{"solve(row):", "  try col", "  if safe: place"}))

	out, err := r.RenderFrame(player.Frame{
		State:     player.StatePaused,
		Index:     4,
		Length:    10,
		Speed:     1,
		Direction: "forward",
		Step: &domain.Step{
			Kind:        domain.KindConflict,
			Description: "Queen at (1, 1) is attacked by (0, 0).",
			Line:        3,
			Ref:         &domain.Ref{Row: 1, Col: 1},
			Snapshot: &domain.Snapshot{
				Path: []int{0},
				Grid: [][]int{{1, 0, 0}, {0, 0, 0}, {0, 0, 0}},
			},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "PAUSED  step 5/10  x1.00 forward")
	assert.Contains(t, out, "conflict Queen at (1, 1) is attacked by (0, 0).")
	assert.Contains(t, out, "> "+"  if safe: place")
	assert.Contains(t, out, "  solve(row):")
	assert.Contains(t, out, "Q . .\n. x .\n. . .\n")
}

func TestFrameRenderer_Path(t *testing.T) {
	r := tui.NewFrameRenderer(plainOutput(&bytes.Buffer{}))
	out, err := r.RenderFrame(player.Frame{
		State:  player.StatePlaying,
		Length: 1,
		Speed:  2,
		Step: &domain.Step{
			Kind:        domain.KindTraverse,
			Description: "5 < 8, moving to the left subtree.",
			Snapshot:    &domain.Snapshot{Path: []int{8, 3}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "traverse 5 < 8, moving to the left subtree.")
	assert.Contains(t, out, "path: 8 3\n")
}

func TestFrameRenderer_Live(t *testing.T) {
	r := tui.NewFrameRenderer(plainOutput(&bytes.Buffer{}), tui.WithWidth(10))
	out, err := r.RenderLive(player.LiveFrame{
		Algorithm: "binary",
		Speed:     1,
		State: &domain.RunSnapshot{
			Values:  []int{2, 4},
			Overlay: []domain.ElementStatus{domain.StatusDiscarded, domain.StatusFound},
			Stats:   domain.Stats{Comparisons: 2, Elapsed: 3 * time.Millisecond},
		},
		Outcome: &domain.RunOutcome{Status: domain.RunCompleted, Found: 1},
	})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "COMPLETED  binary  x1.00", lines[0])
	assert.Equal(t, "2 ###", lines[1])
	assert.Equal(t, "4 #######", lines[2])
	assert.Equal(t, "comparisons 2  swaps 0  elapsed 3ms", lines[3])
	assert.Equal(t, "found at index 1", lines[4])
}

func TestMarkdownRenderer(t *testing.T) {
	md, err := tui.NewMarkdownRenderer("notty", 60)
	require.NoError(t, err)
	r := tui.NewFrameRenderer(plainOutput(&bytes.Buffer{}), tui.WithMarkdown(md))
	out, err := r.RenderFrame(player.Frame{
		State:  player.StateReady,
		Length: 1,
		Step:   &domain.Step{Kind: domain.KindPlace, Description: "Placing queen in row 0."},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "place")
	assert.Contains(t, out, "Placing queen in row 0.")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(plainOutput(&buf), "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestRawOutput(t *testing.T) {
	var buf bytes.Buffer
	n, err := tui.RawOutput(&buf).Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}
