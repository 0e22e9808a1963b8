package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSequence_RejectsEmpty(t *testing.T) {
	seq, err := domain.NewSequence(nil)
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, domain.ErrUninitialized)
}

func TestSequence_StepsAreImmutable(t *testing.T) {
	board := [][]int{{1, 0}, {0, 1}}
	path := []int{0, 1}
	seq, err := domain.NewSequence([]domain.Step{{
		Kind:     domain.KindSolution,
		Snapshot: &domain.Snapshot{Grid: board, Path: path},
		Ref:      &domain.Ref{Row: 1, Col: 1},
	}})
	require.NoError(t, err)

	// Mutating the producer's structures must not leak into the sequence.
	board[0][0] = 9
	path[0] = 9

	got := seq.At(0)
	assert.Equal(t, 1, got.Snapshot.Grid[0][0])
	assert.Equal(t, 0, got.Snapshot.Path[0])

	// Mutating a returned step must not leak either.
	got.Snapshot.Grid[1][1] = 7
	got.Ref.Row = 5
	again := seq.At(0)
	assert.Equal(t, 1, again.Snapshot.Grid[1][1])
	assert.Equal(t, 1, again.Ref.Row)
}

func TestSequence_Cursor(t *testing.T) {
	seq, err := domain.NewSequence([]domain.Step{
		{Kind: domain.KindTry, Description: "a"},
		{Kind: domain.KindPlace, Description: "b"},
	})
	require.NoError(t, err)

	c := seq.Cursor()
	var got []string
	for c.HasNext() {
		st, ok := c.Next()
		require.True(t, ok)
		got = append(got, st.Description)
	}
	assert.Equal(t, []string{"a", "b"}, got)

	_, ok := c.Next()
	assert.False(t, ok)

	c.Rewind()
	assert.True(t, c.HasNext())
}

func TestSequence_JSON(t *testing.T) {
	seq, err := domain.NewSequence([]domain.Step{
		{Kind: domain.KindInsert, Operation: domain.OpInsert, Arg: 10, Description: "Creating new node 10 as root element."},
	})
	require.NoError(t, err)

	data, err := json.Marshal(seq)
	require.NoError(t, err)

	var decoded domain.Sequence
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, seq.Steps(), decoded.Steps())

	assert.ErrorIs(t, json.Unmarshal([]byte(`[]`), &decoded), domain.ErrUninitialized)
}

func TestParams_KeyIgnoresPacing(t *testing.T) {
	a := domain.Params{Algorithm: "Queens", Size: 4, DelayMs: 10, Speed: 2}
	b := domain.Params{Algorithm: "queens", Size: 4, DelayMs: 500, Speed: 1}
	assert.Equal(t, a.Key(), b.Key())

	c := domain.Params{Algorithm: "queens", Size: 5}
	assert.NotEqual(t, a.Key(), c.Key())
}
