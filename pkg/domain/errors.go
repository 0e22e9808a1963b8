package domain

import "errors"

// ErrInvalidParams is returned when algorithm parameters are malformed or out of domain.
// Validation failures wrap it, so callers should match with errors.Is.
var ErrInvalidParams = errors.New("invalid parameters")

// ErrInvalidOperation is returned when a structural operation is not part of the known set.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrUninitialized is returned when a request targets a structure or sequence that was never built.
var ErrUninitialized = errors.New("uninitialized")

// ErrUnknownAlgorithm is returned when no producer or executor is registered under a name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ErrAlreadyRunning is returned when a live run is started while another is active.
var ErrAlreadyRunning = errors.New("run already in progress")

// ErrNotRunning is returned when a live run is stopped but none is active.
var ErrNotRunning = errors.New("no run in progress")

// ErrNoSequence is returned when playback is requested before a sequence is loaded.
var ErrNoSequence = errors.New("no sequence loaded")

// ErrFrozen is returned when a RunState is written after its run terminated.
var ErrFrozen = errors.New("run state is frozen")

// ErrSurfaceNotFound is returned when a visualization surface ID is unknown.
var ErrSurfaceNotFound = errors.New("surface not found")

// ErrCacheMiss is returned by sequence caches when no entry exists for a key.
var ErrCacheMiss = errors.New("sequence not cached")
