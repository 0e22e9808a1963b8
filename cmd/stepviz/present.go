package main

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz/internal/presentation/tui"
	"github.com/aretw0/stepviz/pkg/runner"
)

// addPresentFlags registers the output flags shared by every command that
// animates frames.
func addPresentFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Emit frames as NDJSON instead of drawing them")
	cmd.Flags().BoolP("interactive", "i", true, "Read key presses from a terminal stdin (space, h/l, +/-, r, d, q)")
	cmd.Flags().Float64("speed", 0, "Playback speed multiplier (default from config)")
	cmd.Flags().String("style", "", "Markdown style for narration: dark, light, notty or auto when empty")
}

// newRunner builds a runner for cmd's output flags. The returned function
// restores the terminal and must always be called.
func newRunner(cmd *cobra.Command, listing []string) (*runner.Runner, func(), error) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	interactive, _ := cmd.Flags().GetBool("interactive")
	style, _ := cmd.Flags().GetString("style")

	opts := []runner.Option{runner.WithLogger(logger), runner.WithSignals(true)}
	restore := func() {}
	if jsonOut {
		opts = append(opts, runner.WithHandler(runner.NewJSONHandler(os.Stdout)))
		return runner.New(opts...), restore, nil
	}

	profile := tui.NewOutput(os.Stdout).Profile
	var w io.Writer = os.Stdout
	if interactive && tui.IsTerminal(os.Stdin) && tui.IsTerminal(os.Stdout) {
		r, err := tui.RawInput(os.Stdin)
		if err != nil {
			return nil, restore, fmt.Errorf("failed to read keys from terminal: %w", err)
		}
		restore = r
		w = tui.RawOutput(os.Stdout)
		opts = append(opts, runner.WithControls(os.Stdin, nil))
	}
	out := tui.NewOutput(w, termenv.WithProfile(profile))

	width := tui.Width(os.Stdout)
	renderOpts := []tui.Option{tui.WithListing(listing), tui.WithWidth(width)}
	if md, err := tui.NewMarkdownRenderer(style, width); err != nil {
		logger.Warn("markdown narration disabled", "err", err)
	} else {
		renderOpts = append(renderOpts, tui.WithMarkdown(md))
	}

	textOpts := []runner.TextHandlerOption{
		runner.WithTextHandlerRenderer(tui.NewFrameRenderer(out, renderOpts...)),
	}
	if tui.IsTerminal(os.Stdout) {
		textOpts = append(textOpts, runner.WithTextHandlerRedraw(tui.Clear(out)))
	}
	opts = append(opts, runner.WithHandler(runner.NewTextHandler(w, textOpts...)))
	return runner.New(opts...), restore, nil
}

func speedFlag(cmd *cobra.Command) float64 {
	speed, _ := cmd.Flags().GetFloat64("speed")
	if speed > 0 {
		return speed
	}
	return cfg.Speed
}
