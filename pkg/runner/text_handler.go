package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/stepviz/pkg/player"
)

// TextHandler writes human-readable frames.
type TextHandler struct {
	Writer   io.Writer
	Renderer FrameRenderer

	// clear is invoked before every frame when redrawing in place.
	clear func(io.Writer)
	mu    sync.Mutex
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the frame renderer.
func WithTextHandlerRenderer(renderer FrameRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerRedraw makes the handler call clear before each frame so a
// terminal shows only the latest one.
func WithTextHandlerRedraw(clear func(io.Writer)) TextHandlerOption {
	return func(h *TextHandler) {
		h.clear = clear
	}
}

// NewTextHandler creates a handler writing to w, or Stdout when w is nil.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w}
	for _, opt := range opts {
		opt(h)
	}
	if h.Renderer == nil {
		h.Renderer = PlainRenderer{}
	}
	return h
}

func (h *TextHandler) Frame(ctx context.Context, f player.Frame) error {
	out, err := h.Renderer.RenderFrame(f)
	if err != nil {
		out, _ = PlainRenderer{}.RenderFrame(f)
	}
	return h.write(out)
}

func (h *TextHandler) Live(ctx context.Context, f player.LiveFrame) error {
	out, err := h.Renderer.RenderLive(f)
	if err != nil {
		out, _ = PlainRenderer{}.RenderLive(f)
	}
	return h.write(out)
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.Writer, "[%s]\n", msg)
	return err
}

func (h *TextHandler) write(out string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clear != nil {
		h.clear(h.Writer)
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}
