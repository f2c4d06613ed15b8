package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler bundles everything needed to register one handler:
// the pattern, the handler itself, and its middleware chain.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands builds the map of command handlers. Every command sits
// behind the rate-limit middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	rateLimited := []tgbot.Middleware{RateLimit(deps)}

	command := func(pattern string, handler tgbot.HandlerFunc) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  rateLimited,
		}
	}

	return map[string]RegisteredHandler{
		"/start":    command("start", NewStartHandler(deps)),
		"/help":     command("help", NewHelpHandler(deps)),
		"/status":   command("status", NewStatusHandler(deps)),
		"/history":  command("history", NewHistoryHandler(deps)),
		"/export":   command("export", NewExportHandler(deps)),
		"/settings": command("settings", NewSettingsHandler(deps)),
		"/clear":    command("clear", NewClearHandler(deps)),
		"/contact":  command("contact", NewContactHandler(deps)),
	}
}

// CommandList is the command menu published to the platform during
// initialization.
func CommandList() []models.BotCommand {
	return []models.BotCommand{
		{Command: "start", Description: "Start the conversation"},
		{Command: "help", Description: "Show available commands"},
		{Command: "status", Description: "Show connection and storage status"},
		{Command: "history", Description: "Show recent messages"},
		{Command: "export", Description: "Download history as JSON"},
		{Command: "settings", Description: "Show current limits"},
		{Command: "clear", Description: "Delete stored history"},
		{Command: "contact", Description: "How to reach a human"},
	}
}
