package runner

import (
	"context"

	"github.com/aretw0/stepviz/pkg/player"
)

// FrameHandler presents frames produced by a Runner.
type FrameHandler interface {
	// Frame presents one materialized playback frame.
	Frame(ctx context.Context, f player.Frame) error

	// Live presents one frame of a live run.
	Live(ctx context.Context, f player.LiveFrame) error

	// SystemOutput presents a message from the runner itself, such as a
	// notice that playback was interrupted.
	SystemOutput(ctx context.Context, msg string) error
}

// FrameRenderer turns frames into display text. The tui package provides a
// colored implementation; PlainRenderer is the fallback.
type FrameRenderer interface {
	RenderFrame(f player.Frame) (string, error)
	RenderLive(f player.LiveFrame) (string, error)
}
