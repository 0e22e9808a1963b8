/*
Package player turns step sources into paced, controllable animations.

Player drives a materialized domain.Sequence through the state machine

	Idle -> Ready -> Playing <-> Paused -> Idle (Reset)

with at most one ticker goroutine per Player. Any change of parameters
(Load, Resize) stops the ticker and re-enters Ready at index 0, so an index
is never carried over to a different sequence.

LivePlayer owns the lifecycle of a live executor run: Start builds a fresh
RunState and CancelToken, Stop requests cancellation and waits for the run to
acknowledge it before another Start is accepted.
*/
package player
