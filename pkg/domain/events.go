package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSequenceProduced EventType = "sequence_produced"
	EventRunStart         EventType = "run_start"
	EventRunFinish        EventType = "run_finish"
	EventPlayerState      EventType = "player_state"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// SequenceEvent reports a materialized sequence handed to a caller.
type SequenceEvent struct {
	EventBase
	Algorithm string `json:"algorithm"`
	Steps     int    `json:"steps"`
	Cached    bool   `json:"cached"`
}

// RunEvent reports the start or end of a live run.
type RunEvent struct {
	EventBase
	RunID     string    `json:"run_id"`
	Algorithm string    `json:"algorithm"`
	Status    RunStatus `json:"status,omitempty"`
	Stats     Stats     `json:"stats"`
}

// PlayerEvent reports a player state transition.
type PlayerEvent struct {
	EventBase
	From  string `json:"from"`
	To    string `json:"to"`
	Index int    `json:"index"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil fields are skipped.
type LifecycleHooks struct {
	OnSequence    func(context.Context, *SequenceEvent)
	OnRunStart    func(context.Context, *RunEvent)
	OnRunFinish   func(context.Context, *RunEvent)
	OnPlayerState func(context.Context, *PlayerEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSequence:    chain(h.OnSequence, other.OnSequence),
		OnRunStart:    chain(h.OnRunStart, other.OnRunStart),
		OnRunFinish:   chain(h.OnRunFinish, other.OnRunFinish),
		OnPlayerState: chain(h.OnPlayerState, other.OnPlayerState),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
