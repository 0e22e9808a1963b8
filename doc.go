/*
Package stepviz is an engine for animating classic algorithms step by step.

It offers two ways of producing the moments a renderer shows:

  - Materialized sequences: backtracking searches (N-Queens, permutations,
    subset-sum) and binary search tree operations are walked eagerly into an
    immutable, indexable domain.Sequence. A player.Player then animates it with
    play, pause, step and jump controls.
  - Live runs: sorting and searching algorithms mutate a shared
    domain.RunState one observable operation at a time, pacing themselves and
    honoring a cooperative domain.CancelToken. A player.LivePlayer starts and
    stops them.

# Usage

	eng := stepviz.New(stepviz.WithDelay(50 * time.Millisecond))

	seq, err := eng.Produce(ctx, domain.Params{Algorithm: "queens", Size: 6})
	if err != nil {
		log.Fatal(err)
	}

	p := eng.NewPlayer(domain.Params{Algorithm: "queens"})
	_ = p.Load(seq)
	_ = p.Play()

	live := eng.NewLivePlayer()
	_ = live.Start(ctx, "quick-sort", []int{5, 3, 4, 1, 2}, 0)
	outcome, _ := live.Wait(ctx)

Surfaces (CLI, HTTP with server-sent frames, MCP tools) live under cmd and
pkg/adapters.
*/
package stepviz
