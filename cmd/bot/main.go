// Package main contains the entrypoint for the bot service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/ArDangerUS/LegalFlowService/internal/bot"
	"github.com/ArDangerUS/LegalFlowService/internal/bot/handlers"
	"github.com/ArDangerUS/LegalFlowService/internal/bot/tasks"
	"github.com/ArDangerUS/LegalFlowService/internal/cache"
	"github.com/ArDangerUS/LegalFlowService/internal/config"
	"github.com/ArDangerUS/LegalFlowService/internal/database"
	"github.com/ArDangerUS/LegalFlowService/internal/history"
	"github.com/ArDangerUS/LegalFlowService/internal/logger"
	"github.com/ArDangerUS/LegalFlowService/internal/ratelimit"
	"github.com/ArDangerUS/LegalFlowService/internal/telegram"
)

const confirmationTTL = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires all components together, blocks until shutdown, and returns the
// process exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format == "json")
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	// A database failure is not fatal: the history service degrades to
	// cache-only mode.
	var store database.Store
	if cfg.Database.Path != "" {
		db, dbErr := database.NewDB(cfg.Database.Path)
		if dbErr != nil {
			log.Warn("Failed to open database, continuing in cache-only mode",
				"path", cfg.Database.Path, "error", dbErr)
		} else {
			defer database.CloseDB(db)
			store = database.NewStore(db, log)

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if pingErr := store.Ping(pingCtx); pingErr != nil {
				log.Warn("Database ping failed, continuing in cache-only mode", "error", pingErr)
				store = nil
			}
			cancel()
		}
	}

	messageCache := cache.New[database.Message](cfg.Cache.MaxSize, cfg.Cache.TTL)
	conversationCache := cache.New[database.Conversation](cfg.Cache.MaxSize, cfg.Cache.TTL)
	confirmations := cache.New[string](128, confirmationTTL)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window)
	historySvc := history.NewService(store, messageCache, conversationCache, log)

	// The supervisor is constructed after the client; handlers read its
	// status through this indirection.
	var supervisor *bot.Supervisor
	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		History: historySvc,
		Limiter: limiter,
		Status: func() bot.Status {
			if supervisor == nil {
				return bot.Status{}
			}
			return supervisor.Status()
		},
		Confirmations: confirmations,
	}

	defaultHandler := handlers.RateLimit(hDeps)(handlers.NewMessageHandler(hDeps))
	client, err := telegram.NewClient(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(defaultHandler),
	)
	if err != nil {
		log.Error("Failed to create Telegram client", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(client.Bot(), log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	supervisor = bot.NewSupervisor(
		client,
		client,
		cfg.Supervisor,
		cfg.Telegram.DropPendingUpdates,
		handlers.CommandList(),
		log,
	)

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:  log,
		Store:   store,
		History: historySvc,
		Limiter: limiter,
	})
	scheduler, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	notifyAdmin(client, cfg.Telegram.AdminChatID, "Bot started.", log)

	app := bot.NewBot(log, supervisor, scheduler)
	runErr := app.Run(ctx)

	// Shutdown steps are independent: a failure in one never blocks the next.
	shutdown(client, historySvc, cfg.Telegram.AdminChatID, log)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

// shutdown sweeps the caches and notifies the admin chat, best-effort.
func shutdown(client *telegram.Client, historySvc *history.Service, adminChatID int64, log *slog.Logger) {
	messages, conversations := historySvc.SweepCaches()
	log.Info("Caches swept on shutdown",
		"expired_messages", messages,
		"expired_conversations", conversations)

	notifyAdmin(client, adminChatID, "Bot shutting down.", log)
}

// notifyAdmin sends a short status note to the admin chat when one is
// configured. Failures are logged only.
func notifyAdmin(client *telegram.Client, adminChatID int64, content string, log *slog.Logger) {
	if adminChatID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.SendText(ctx, adminChatID, content); err != nil {
		log.Warn("Failed to notify admin chat", "chat_id", adminChatID, "error", err)
	}
}
