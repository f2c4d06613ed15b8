package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask runs database maintenance. Skipped in cache-only
// mode where no store exists.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		if deps.Store == nil {
			log.InfoContext(ctx, "No remote store configured, skipping SQL maintenance")
			return nil
		}

		startTime := time.Now()
		if err := deps.Store.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(startTime))
		return nil
	}
}
