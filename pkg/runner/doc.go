/*
Package runner drives a player to completion and hands every frame to a
pluggable handler.

It is the bridge between the playback core (player.Player, player.LivePlayer)
and a terminal or pipe. The runner owns signal handling for the duration of a
run: an interrupt pauses materialized playback and cancels live runs.

# Key Components

  - Runner: plays a materialized sequence or a live run until it ends.
  - FrameHandler: decouples how frames are presented (text, JSON lines).
  - TextHandler: human-readable output, optionally redrawn in place.
  - JSONHandler: one JSON document per frame for scripting.
  - Controls: maps single key presses onto player commands.

# Usage

	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
	)

	if err := r.Play(ctx, p); err != nil {
		log.Fatal(err)
	}
*/
package runner
