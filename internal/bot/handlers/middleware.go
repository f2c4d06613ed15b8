// Package handlers contains the Telegram command and message handlers,
// their registration map, and the rate-limit middleware.
package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RateLimit rejects messages from users who exceeded the sliding window,
// replying with a wait-time hint instead of invoking the wrapped handler.
func RateLimit(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			key := strconv.FormatInt(update.Message.From.ID, 10)
			if deps.Limiter.Allow(key) {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "rate_limit")

			waitSeconds := int64(1)
			if reset, ok := deps.Limiter.ResetTime(key); ok {
				waitSeconds = int64(math.Ceil(time.Until(reset).Seconds()))
				if waitSeconds < 1 {
					waitSeconds = 1
				}
			}

			log.WarnContext(ctx, "Rate limit exceeded",
				"user_id", update.Message.From.ID,
				"chat_id", chatID,
				"wait_seconds", waitSeconds)

			_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   fmt.Sprintf(deps.Config.Messages.RateLimited, waitSeconds),
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send rate limit message", "error", err, "chat_id", chatID)
			}
		}
	}
}
