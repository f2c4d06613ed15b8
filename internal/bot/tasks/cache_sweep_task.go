package tasks

import (
	"context"
	"time"
)

// newCacheSweepTask drops expired cache entries and idle rate-limiter keys
// so long-lived processes don't accumulate one-off senders.
func newCacheSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_sweep")

	return func(ctx context.Context) error {
		startTime := time.Now()

		messages, conversations := deps.History.SweepCaches()
		idleKeys := 0
		if deps.Limiter != nil {
			idleKeys = deps.Limiter.PurgeIdle()
		}

		log.InfoContext(ctx, "Cache sweep completed",
			"expired_messages", messages,
			"expired_conversations", conversations,
			"idle_limiter_keys", idleKeys,
			"duration", time.Since(startTime))
		return nil
	}
}
