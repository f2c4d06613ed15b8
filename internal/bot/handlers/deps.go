package handlers

import (
	"log/slog"

	core "github.com/ArDangerUS/LegalFlowService/internal/bot"
	"github.com/ArDangerUS/LegalFlowService/internal/cache"
	"github.com/ArDangerUS/LegalFlowService/internal/config"
	"github.com/ArDangerUS/LegalFlowService/internal/history"
	"github.com/ArDangerUS/LegalFlowService/internal/ratelimit"
)

// HandlerDeps provides dependencies for the Telegram handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	History *history.Service
	Limiter *ratelimit.Limiter

	// Status reads the supervisor's connection snapshot for /status.
	Status func() core.Status

	// Confirmations holds pending /clear confirmations keyed by chat id.
	Confirmations *cache.Cache[string]
}
