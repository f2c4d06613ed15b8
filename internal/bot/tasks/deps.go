// Package tasks implements the scheduled maintenance tasks and their
// registration.
package tasks

import (
	"log/slog"

	"github.com/ArDangerUS/LegalFlowService/internal/database"
	"github.com/ArDangerUS/LegalFlowService/internal/history"
	"github.com/ArDangerUS/LegalFlowService/internal/ratelimit"
)

// TaskDeps contains everything the scheduled tasks may need. Store is nil in
// cache-only mode.
type TaskDeps struct {
	Logger  *slog.Logger
	Store   database.Store
	History *history.Service
	Limiter *ratelimit.Limiter
}
