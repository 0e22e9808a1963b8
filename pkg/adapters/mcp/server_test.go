package mcp

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
)

func newTestServer() *Server {
	return NewServer(stepviz.New(stepviz.WithDelay(0)))
}

func TestServer_ListsTools(t *testing.T) {
	s := newTestServer()
	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"produce_sequence", "tree_steps", "run_sort", "run_search"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}

func TestProduce(t *testing.T) {
	s := newTestServer()

	resp, err := s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "queens", Size: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Counts[domain.KindSolution])
	assert.Equal(t, min(resp.Length, DefaultLimit), len(resp.Steps))

	paged, err := s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "queens", Size: 4, Offset: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, paged.Offset)
	assert.Len(t, paged.Steps, 5)
	assert.Equal(t, resp.Length, paged.Length)
	assert.Equal(t, resp.Steps[2], paged.Steps[0])

	tail, err := s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "queens", Size: 4, Offset: 1 << 20})
	require.NoError(t, err)
	assert.Empty(t, tail.Steps)

	huge, err := s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "queens", Size: 8, Offset: 2000, Limit: math.MaxInt - 1023})
	require.NoError(t, err)
	require.Greater(t, huge.Length, 2000)
	assert.Len(t, huge.Steps, huge.Length-2000)
	assert.Equal(t, 2000, huge.Offset)
}

func TestProduce_Errors(t *testing.T) {
	s := newTestServer()
	_, err := s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "tsp"})
	assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)

	_, err = s.handleProduce(context.Background(), mcp.CallToolRequest{}, ProduceArgs{Algorithm: "queens", Size: 11})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestTree(t *testing.T) {
	s := newTestServer()
	resp, err := s.handleTree(context.Background(), mcp.CallToolRequest{}, TreeArgs{Keys: []int{5, 3, 8}, Op: "delete", Arg: "5"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 8}, resp.Inorder)
	assert.Equal(t, "bst-delete", resp.Algorithm)
	require.NotEmpty(t, resp.Steps)
	assert.Equal(t, domain.KindDelete, resp.Steps[len(resp.Steps)-1].Kind)

	_, err = s.handleTree(context.Background(), mcp.CallToolRequest{}, TreeArgs{Op: "insert", Arg: "x"})
	assert.Error(t, err)
}

func TestRunSort(t *testing.T) {
	s := newTestServer()
	run := s.runOf(executor.KindSort)

	out, err := run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "merge-sort", Values: []int{4, 1, 3, 2}})
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, out.Status)
	assert.Equal(t, []int{1, 2, 3, 4}, out.Values)
	assert.Positive(t, out.Stats.Comparisons)

	out, err = run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "heap", Size: 12})
	require.NoError(t, err)
	assert.Len(t, out.Values, 12)

	_, err = run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "linear", Values: []int{1}})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestRunSearch(t *testing.T) {
	s := newTestServer()
	run := s.runOf(executor.KindSearch)

	out, err := run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "binary", Values: []int{1, 3, 5, 7}, Target: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Found)

	out, err = run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "linear", Values: []int{1, 3}, Target: 4})
	require.NoError(t, err)
	assert.Equal(t, -1, out.Found)

	_, err = run(context.Background(), mcp.CallToolRequest{}, RunArgs{Algorithm: "binary", Values: []int{3, 1}, Target: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}
