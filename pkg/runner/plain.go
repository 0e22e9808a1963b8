package runner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/player"
)

// PlainRenderer renders frames as uncolored text.
type PlainRenderer struct{}

// RenderFrame renders the header, the narration and any snapshot of f.
func (PlainRenderer) RenderFrame(f player.Frame) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "step %d/%d  %s  x%.2f %s\n", f.Index+1, f.Length, f.State, f.Speed, f.Direction)
	if f.Step == nil {
		return b.String(), nil
	}
	st := f.Step
	fmt.Fprintf(&b, "%-9s %s", st.Kind, st.Description)
	if st.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", st.Line)
	}
	b.WriteByte('\n')
	if st.Snapshot != nil {
		if len(st.Snapshot.Path) > 0 {
			fmt.Fprintf(&b, "path: %s\n", joinInts(st.Snapshot.Path, " "))
		}
		for _, row := range st.Snapshot.Grid {
			b.WriteString(BoardRow(row))
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// RenderLive renders the working array, its overlay and counters.
func (PlainRenderer) RenderLive(f player.LiveFrame) (string, error) {
	var b strings.Builder
	state := "idle"
	if f.Running {
		state = "running"
	} else if f.Outcome != nil {
		state = string(f.Outcome.Status)
	}
	fmt.Fprintf(&b, "%s  %s  x%.2f\n", f.Algorithm, state, f.Speed)
	if f.State != nil {
		fmt.Fprintf(&b, "values: %s\n", joinInts(f.State.Values, " "))
		fmt.Fprintf(&b, "status: %s\n", overlayCodes(f.State.Overlay))
		s := f.State.Stats
		fmt.Fprintf(&b, "comparisons=%d swaps=%d elapsed=%s\n", s.Comparisons, s.Swaps, s.Elapsed.Round(time.Millisecond))
	}
	if f.Outcome != nil {
		if f.Outcome.Found >= 0 {
			fmt.Fprintf(&b, "found at %d\n", f.Outcome.Found)
		}
		if f.Outcome.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", f.Outcome.Error)
		}
	}
	return b.String(), nil
}

// BoardRow renders one row of a board grid; occupied cells are queens.
func BoardRow(row []int) string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v != 0 {
			cells[i] = "Q"
		} else {
			cells[i] = "."
		}
	}
	return strings.Join(cells, " ")
}

// StatusCode abbreviates an element status to a single character.
func StatusCode(s domain.ElementStatus) string {
	switch s {
	case domain.StatusComparing:
		return "c"
	case domain.StatusSwapping:
		return "s"
	case domain.StatusPivot:
		return "p"
	case domain.StatusActive:
		return "a"
	case domain.StatusDiscarded:
		return "x"
	case domain.StatusFound:
		return "F"
	case domain.StatusSorted:
		return "="
	}
	return "."
}

func overlayCodes(overlay []domain.ElementStatus) string {
	codes := make([]string, len(overlay))
	for i, s := range overlay {
		codes[i] = StatusCode(s)
	}
	return strings.Join(codes, " ")
}

func joinInts(vs []int, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
