/*
Package domain contains the core data model of the stepviz engine.

It defines the records exchanged between step producers, live executors and the
step player. This package is kept free of I/O, timers and persistence so every
other layer can depend on it.

# Key Entities

  - Step: One immutable, renderable moment of an algorithm. Structural payloads
    (boards, tree paths) are deep copies taken when the Step is built.
  - Sequence: A finite, indexable, deterministic ordered collection of Steps.
  - RunState: The working array, status overlay and statistics mutated by a live run.
  - CancelToken: A one-shot stop request shared between a player and an executor.
  - RunOutcome: How a live run ended (completed, cancelled or failed).
*/
package domain
