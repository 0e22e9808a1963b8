package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aretw0/stepviz/pkg/player"
)

// Message is one JSON line written by JSONHandler.
type Message struct {
	Type    string            `json:"type"`
	Frame   *player.Frame     `json:"frame,omitempty"`
	Live    *player.LiveFrame `json:"live,omitempty"`
	Message string            `json:"message,omitempty"`
}

// JSONHandler writes one Message per line.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONHandler creates a handler for JSON-Lines output.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Frame(ctx context.Context, f player.Frame) error {
	return h.encode(Message{Type: "frame", Frame: &f})
}

func (h *JSONHandler) Live(ctx context.Context, f player.LiveFrame) error {
	return h.encode(Message{Type: "live", Live: &f})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(Message{Type: "system", Message: msg})
}

func (h *JSONHandler) encode(m Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(m)
}
