package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepviz/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequence: func(ctx context.Context, e *domain.SequenceEvent) {
			logger.InfoContext(ctx, "sequence_produced",
				"algorithm", e.Algorithm,
				"steps", e.Steps,
				"cached", e.Cached,
			)
		},
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start",
				"run_id", e.RunID,
				"algorithm", e.Algorithm,
				"size", e.Stats.Size,
			)
		},
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			level := slog.LevelInfo
			if e.Status == domain.RunFailed {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "run_finish",
				"run_id", e.RunID,
				"algorithm", e.Algorithm,
				"status", e.Status,
				"comparisons", e.Stats.Comparisons,
				"swaps", e.Stats.Swaps,
			)
		},
		OnPlayerState: func(ctx context.Context, e *domain.PlayerEvent) {
			logger.DebugContext(ctx, "player_state",
				"from", e.From,
				"to", e.To,
				"index", e.Index,
			)
		},
	}
}
