/*
Package executor runs array algorithms live against a shared domain.RunState.

An Algorithm body receives a *Run and performs every observable operation
through it (Compare, Swap, Set, Mark). Each operation marks the status overlay,
publishes the updated counters and then suspends for the pacing delay; the
suspension is the only scheduling point of a run.

# Checkpoints

The CancelToken is polled at three places, which bounds cancellation latency to
one operation:

  - Run.Checkpoint, called by bodies at every loop head,
  - the entry of every step primitive, before any write,
  - the end of every pacing suspension.

Once a checkpoint observes the request the body unwinds, the RunState is frozen
as last committed (never rolled back) and the outcome reports RunCancelled.
*/
package executor
