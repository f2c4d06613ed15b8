package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDBPath = "storage.db"

	DefaultRateLimitMaxMessages = 10
	DefaultRateLimitWindow      = time.Minute

	DefaultCacheMaxSize = 1000
	DefaultCacheTTL     = time.Hour

	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 5 * time.Second
	DefaultPollingInterval      = time.Second

	DefaultDropPendingUpdates = true
)

func setDefaults() {
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("log.format", DefaultLogFormat)

	viper.SetDefault("telegram.drop_pending_updates", DefaultDropPendingUpdates)

	viper.SetDefault("database.path", DefaultDBPath)

	viper.SetDefault("rate_limit.max_messages", DefaultRateLimitMaxMessages)
	viper.SetDefault("rate_limit.window", DefaultRateLimitWindow)

	viper.SetDefault("cache.max_size", DefaultCacheMaxSize)
	viper.SetDefault("cache.ttl", DefaultCacheTTL)

	viper.SetDefault("supervisor.max_reconnect_attempts", DefaultMaxReconnectAttempts)
	viper.SetDefault("supervisor.reconnect_delay", DefaultReconnectDelay)
	viper.SetDefault("supervisor.polling_interval", DefaultPollingInterval)

	viper.SetDefault("messages.welcome", "Welcome! I keep track of this conversation. Send /help to see what I can do.")
	viper.SetDefault("messages.help", "Available commands:\n/start - start the conversation\n/help - show this message\n/status - connection and storage status\n/history - show recent messages\n/export - download history as JSON\n/settings - show current limits\n/clear - delete stored history\n/contact - how to reach a human")
	viper.SetDefault("messages.rate_limited", "Too many messages, please slow down. Try again in %d seconds.")
	viper.SetDefault("messages.general_error", "An error occurred. Please try again later.")
	viper.SetDefault("messages.clear_confirm", "This deletes the stored history for everyone. Send /clear again within a minute to confirm.")
	viper.SetDefault("messages.clear_done", "History has been cleared.")
	viper.SetDefault("messages.clear_aborted", "Could not clear history, please try again later.")
	viper.SetDefault("messages.contact", "You can reach the team at support@legalflow.example. A human will get back to you.")
	viper.SetDefault("messages.empty_history", "No messages stored yet.")

	viper.SetDefault("messages.ack_document", "Document received and filed.")
	viper.SetDefault("messages.ack_photo", "Photo received.")
	viper.SetDefault("messages.ack_audio", "Audio received.")
	viper.SetDefault("messages.ack_video", "Video received.")
	viper.SetDefault("messages.ack_voice", "Voice message received.")
	viper.SetDefault("messages.ack_sticker", "Nice sticker!")
	viper.SetDefault("messages.ack_location", "Location received.")
	viper.SetDefault("messages.ack_contact", "Contact card received.")
	viper.SetDefault("messages.ack_unsupported", "This message type is not supported yet.")

	viper.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"cache_sweep":     {Enabled: true, Schedule: "*/10 * * * *"},
		"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
	})
}
