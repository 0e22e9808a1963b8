package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/bst"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
)

// DefaultLimit caps the steps returned by one call when no limit is given.
const DefaultLimit = 200

// ProduceArgs are the arguments of produce_sequence.
type ProduceArgs struct {
	Algorithm string `json:"algorithm"`
	Size      int    `json:"size,omitempty"`
	Values    []int  `json:"values,omitempty"`
	Target    int    `json:"target,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// TreeArgs are the arguments of tree_steps.
type TreeArgs struct {
	Keys   []int  `json:"keys,omitempty"`
	Op     string `json:"op"`
	Arg    string `json:"arg,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// RunArgs are the arguments of run_sort and run_search.
type RunArgs struct {
	Algorithm string `json:"algorithm"`
	Values    []int  `json:"values,omitempty"`
	Size      int    `json:"size,omitempty"`
	Target    int    `json:"target,omitempty"`
}

// SequenceResponse is a page of a materialized sequence.
type SequenceResponse struct {
	Algorithm string                  `json:"algorithm" jsonschema_description:"Canonical producer name"`
	Length    int                     `json:"length" jsonschema_description:"Total number of steps"`
	Offset    int                     `json:"offset"`
	Steps     []domain.Step           `json:"steps" jsonschema_description:"Steps from offset, at most limit of them"`
	Counts    map[domain.StepKind]int `json:"counts" jsonschema_description:"Number of steps per kind over the whole sequence"`
	Inorder   []int                   `json:"inorder,omitempty" jsonschema_description:"Tree keys after the operation"`
}

// Server exposes the stepviz engine as an MCP server.
type Server struct {
	engine    *stepviz.Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *stepviz.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stepviz-mcp", stepviz.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	produceTool := mcp.NewTool("produce_sequence",
		mcp.WithDescription("Materialize the step sequence of a backtracking producer (queens, permutations, subset-sum)."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Description("Producer name")),
		mcp.WithNumber("size", mcp.Description("Board size for queens")),
		mcp.WithArray("values", mcp.Description("Input values for permutations and subset-sum"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithNumber("target", mcp.Description("Target sum for subset-sum")),
		mcp.WithNumber("offset", mcp.Description("First step to return")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of steps to return")),
		mcp.WithOutputSchema[SequenceResponse](),
	)
	s.mcpServer.AddTool(produceTool, mcp.NewStructuredToolHandler(s.handleProduce))

	treeTool := mcp.NewTool("tree_steps",
		mcp.WithDescription("Narrate a binary search tree operation on a tree built from keys."),
		mcp.WithArray("keys", mcp.Description("Keys inserted, in order, before the operation"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("op", mcp.Required(), mcp.Description("insert, search, delete, inorder, preorder or postorder")),
		mcp.WithString("arg", mcp.Description("Key argument of insert, search and delete")),
		mcp.WithNumber("offset", mcp.Description("First step to return")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of steps to return")),
		mcp.WithOutputSchema[SequenceResponse](),
	)
	s.mcpServer.AddTool(treeTool, mcp.NewStructuredToolHandler(s.handleTree))

	sortTool := mcp.NewTool("run_sort",
		mcp.WithDescription("Run a sorting algorithm to completion and report the outcome and operation counts."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Description("bubble, selection, insertion, quick, merge, heap or sleep")),
		mcp.WithArray("values", mcp.Description("Values to sort; random when omitted"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithNumber("size", mcp.Description("Number of random values when values is omitted")),
		mcp.WithOutputSchema[domain.RunOutcome](),
	)
	s.mcpServer.AddTool(sortTool, mcp.NewStructuredToolHandler(s.runOf(executor.KindSort)))

	searchTool := mcp.NewTool("run_search",
		mcp.WithDescription("Run a search algorithm to completion and report where the target was found."),
		mcp.WithString("algorithm", mcp.Required(), mcp.Description("linear or binary")),
		mcp.WithArray("values", mcp.Description("Values to search; random when omitted"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithNumber("size", mcp.Description("Number of random values when values is omitted")),
		mcp.WithNumber("target", mcp.Required(), mcp.Description("Value to look for")),
		mcp.WithOutputSchema[domain.RunOutcome](),
	)
	s.mcpServer.AddTool(searchTool, mcp.NewStructuredToolHandler(s.runOf(executor.KindSearch)))
}

func (s *Server) handleProduce(ctx context.Context, request mcp.CallToolRequest, args ProduceArgs) (SequenceResponse, error) {
	seq, err := s.engine.Produce(ctx, domain.Params{
		Algorithm: args.Algorithm,
		Size:      args.Size,
		Values:    args.Values,
		Target:    args.Target,
	})
	if err != nil {
		return SequenceResponse{}, fmt.Errorf("produce failed: %w", err)
	}
	resp := page(seq, args.Offset, args.Limit)
	resp.Algorithm = args.Algorithm
	return resp, nil
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (SequenceResponse, error) {
	t := bst.New(args.Keys...)
	seq, err := s.engine.ApplyTree(ctx, args.Op, t, args.Arg)
	if err != nil {
		return SequenceResponse{}, fmt.Errorf("tree operation failed: %w", err)
	}
	resp := page(seq, args.Offset, args.Limit)
	resp.Algorithm = "bst-" + args.Op
	resp.Inorder = t.Inorder()
	return resp, nil
}

// runOf returns a handler running algorithms of kind to completion without
// pacing.
func (s *Server) runOf(kind executor.Kind) func(context.Context, mcp.CallToolRequest, RunArgs) (domain.RunOutcome, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (domain.RunOutcome, error) {
		alg, err := executor.Lookup(args.Algorithm)
		if err != nil {
			return domain.RunOutcome{}, err
		}
		if alg.Kind != kind {
			return domain.RunOutcome{}, fmt.Errorf("%w: %s is not a %s algorithm", domain.ErrInvalidParams, alg.Name, kindName(kind))
		}
		size := args.Size
		if size == 0 {
			size = 10
		}
		values, err := executor.InputFor(alg, args.Values, size)
		if err != nil {
			return domain.RunOutcome{}, err
		}

		started := time.Now()
		out, err := s.engine.Executor().Run(ctx, alg, domain.NewRunState(values), domain.NewCancelToken(), executor.RunOptions{
			Target: args.Target,
			Pace:   func() time.Duration { return 0 },
		})
		if err != nil {
			return domain.RunOutcome{}, err
		}
		out.Stats.Elapsed = time.Since(started)
		if out.Status == domain.RunFailed {
			return out, errors.New(out.Error)
		}
		return out, nil
	}
}

func kindName(k executor.Kind) string {
	if k == executor.KindSearch {
		return "search"
	}
	return "sort"
}

func page(seq *domain.Sequence, offset, limit int) SequenceResponse {
	if limit <= 0 {
		limit = DefaultLimit
	}
	steps := seq.Steps()
	if offset < 0 {
		offset = 0
	}
	if offset > len(steps) {
		offset = len(steps)
	}
	end := offset + min(limit, len(steps)-offset)

	counts := make(map[domain.StepKind]int)
	for _, st := range steps {
		counts[st.Kind]++
	}
	return SequenceResponse{
		Length: len(steps),
		Offset: offset,
		Steps:  steps[offset:end],
		Counts: counts,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("stepviz://algorithms", "Available algorithms",
		mcp.WithResourceDescription("Producers, tree operations and live algorithms grouped by kind."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(stepviz.Algorithms())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "stepviz://algorithms",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
