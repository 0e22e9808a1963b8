package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/internal/config"
	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/session"
)

// Server exposes engine surfaces over HTTP.
type Server struct {
	Engine   *stepviz.Engine
	Surfaces *session.Manager

	defaults domain.Params
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithDefaults sets the parameters request bodies are decoded over.
func WithDefaults(p domain.Params) Option {
	return func(s *Server) {
		s.defaults = p
	}
}

// NewServer creates a Server over engine and surfaces.
func NewServer(engine *stepviz.Engine, surfaces *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Surfaces: surfaces,
		defaults: config.Default().Params(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/algorithms", s.GetAlgorithms)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/surfaces", func(r chi.Router) {
		r.Get("/", s.ListSurfaces)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSurface)
			r.Post("/sequence", s.LoadSequence)
			r.Post("/tree", s.TreeOperation)
			r.Post("/commands/{cmd}", s.Command)
			r.Get("/frame", s.GetFrame)
			r.Get("/live", s.GetLive)
			r.Post("/live", s.StartLive)
			r.Delete("/live", s.StopLive)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":     "stepviz-http",
		"version": stepviz.Version,
	})
}

// GetAlgorithms handles GET /algorithms.
func (s *Server) GetAlgorithms(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, stepviz.Algorithms())
}

// ListSurfaces handles GET /surfaces.
func (s *Server) ListSurfaces(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string][]string{"surfaces": s.Surfaces.List(r.Context())})
}

// DeleteSurface handles DELETE /surfaces/{id}.
func (s *Server) DeleteSurface(w http.ResponseWriter, r *http.Request) {
	if err := s.Surfaces.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadSequence handles POST /surfaces/{id}/sequence. The body is a parameter
// record; the produced sequence replaces whatever the surface's player held.
func (s *Server) LoadSequence(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decode(r, &raw); err != nil {
		s.fail(w, r, err)
		return
	}
	params, err := config.DecodeParams(raw, s.defaults)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var frame player.Frame
	err = s.Surfaces.Update(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sf *session.Surface) error {
		seq, err := s.Engine.Produce(ctx, params)
		if err != nil {
			return err
		}
		if params.Speed > 0 {
			if err := sf.Player.SetSpeed(params.Speed); err != nil {
				return err
			}
		}
		if err := sf.Player.Load(seq); err != nil {
			return err
		}
		sf.Params = params
		frame = sf.Player.Frame()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, frame)
}

// TreeRequest is the body of POST /surfaces/{id}/tree.
type TreeRequest struct {
	Op  string `json:"op"`
	Arg string `json:"arg"`
}

// TreeResponse reports the narrated operation and the resulting keys.
type TreeResponse struct {
	Frame   player.Frame `json:"frame"`
	Inorder []int        `json:"inorder"`
}

// TreeOperation handles POST /surfaces/{id}/tree. Mutating operations are
// applied to the surface's tree after narration.
func (s *Server) TreeOperation(w http.ResponseWriter, r *http.Request) {
	var req TreeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var resp TreeResponse
	err := s.Surfaces.Update(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sf *session.Surface) error {
		seq, err := s.Engine.ApplyTree(ctx, req.Op, sf.Tree, req.Arg)
		if err != nil {
			return err
		}
		if err := sf.Player.Load(seq); err != nil {
			return err
		}
		sf.Params = domain.Params{Algorithm: "bst-" + req.Op}
		resp = TreeResponse{Frame: sf.Player.Frame(), Inorder: sf.Tree.Inorder()}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

// Command handles POST /surfaces/{id}/commands/{cmd}. Arguments travel as
// query parameters: index for jump, value for speed and direction, size for
// resize.
func (s *Server) Command(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cmd := chi.URLParam(r, "cmd")
	q := r.URL.Query()
	if _, err := s.Surfaces.Get(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}

	var frame player.Frame
	err := s.Surfaces.Update(r.Context(), id, func(ctx context.Context, sf *session.Surface) error {
		p := sf.Player
		var err error
		switch cmd {
		case "play":
			err = p.Play()
		case "pause":
			err = p.Pause()
		case "toggle":
			err = p.Toggle()
		case "forward":
			err = p.StepForward()
		case "backward":
			err = p.StepBackward()
		case "rewind":
			err = p.Rewind()
		case "reset":
			p.Reset()
		case "jump":
			var i int
			if i, err = intParam(q.Get("index")); err == nil {
				err = p.Jump(i)
			}
		case "speed":
			var v float64
			if v, err = strconv.ParseFloat(q.Get("value"), 64); err != nil {
				err = fmt.Errorf("%w: speed %q", domain.ErrInvalidParams, q.Get("value"))
			} else {
				err = p.SetSpeed(v)
			}
		case "direction":
			var d player.Direction
			if d, err = player.ParseDirection(q.Get("value")); err == nil {
				err = p.SetDirection(d)
			}
		case "resize":
			var n int
			if n, err = intParam(q.Get("size")); err == nil {
				if err = p.Resize(n); err == nil {
					sf.Params.Size = n
				}
			}
		default:
			err = fmt.Errorf("%w: unknown command %q", domain.ErrInvalidOperation, cmd)
		}
		frame = p.Frame()
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, frame)
}

// GetFrame handles GET /surfaces/{id}/frame.
func (s *Server) GetFrame(w http.ResponseWriter, r *http.Request) {
	sf, err := s.Surfaces.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, sf.Player.Frame())
}

// LiveRequest is the body of POST /surfaces/{id}/live. Values default to Size
// random elements.
type LiveRequest struct {
	Algorithm string  `json:"algorithm"`
	Values    []int   `json:"values,omitempty"`
	Size      int     `json:"size,omitempty"`
	Target    int     `json:"target"`
	Speed     float64 `json:"speed,omitempty"`
}

// StartLive handles POST /surfaces/{id}/live. The run continues after the
// response; poll GET /live or stream /events.
func (s *Server) StartLive(w http.ResponseWriter, r *http.Request) {
	var req LiveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	alg, err := executor.Lookup(req.Algorithm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	size := req.Size
	if size == 0 {
		size = s.defaults.Size
	}
	values, err := executor.InputFor(alg, req.Values, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var frame player.LiveFrame
	err = s.Surfaces.Update(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sf *session.Surface) error {
		if req.Speed > 0 {
			if err := sf.Live.SetSpeed(req.Speed); err != nil {
				return err
			}
		}
		if err := sf.Live.Start(context.Background(), alg.Name, values, req.Target); err != nil {
			return err
		}
		frame = sf.Live.Frame()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusAccepted, frame)
}

// StopLive handles DELETE /surfaces/{id}/live and returns the outcome once
// the executor has acknowledged the stop.
func (s *Server) StopLive(w http.ResponseWriter, r *http.Request) {
	sf, err := s.Surfaces.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := sf.Live.Stop(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, out)
}

// GetLive handles GET /surfaces/{id}/live.
func (s *Server) GetLive(w http.ResponseWriter, r *http.Request) {
	sf, err := s.Surfaces.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, sf.Live.Frame())
}

// SubscribeEvents handles GET /surfaces/{id}/events (SSE). Player frames are
// sent as "frame" events and live frames as "live" events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}
	id := chi.URLParam(r, "id")
	sf, err := s.Surfaces.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	frames := sf.Player.Subscribe(r.Context())
	lives := sf.Live.Subscribe(r.Context())
	s.logger.Info("SSE client subscribed", "surface", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		var (
			event string
			data  any
		)
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "surface", id)
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			event, data = "frame", f
		case f, ok := <-lives:
			if !ok {
				return
			}
			event, data = "live", f
		}
		payload, err := json.Marshal(data)
		if err != nil {
			s.logger.Error("SSE encode failed", "err", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
		flusher.Flush()
	}
}

// -- Helpers --

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidParams, err)
	}
	return nil
}

func intParam(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: expected an integer, got %q", domain.ErrInvalidParams, v)
	}
	return n, nil
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSurfaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrUnknownAlgorithm),
		errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyRunning),
		errors.Is(err, domain.ErrNotRunning),
		errors.Is(err, domain.ErrNoSequence),
		errors.Is(err, domain.ErrUninitialized):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", code, "err", err)
	}
	s.respond(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
