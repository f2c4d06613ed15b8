// Package config loads application configuration from defaults, an optional
// config.yaml file, and BOT_* environment variables, then validates it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Supervisor SupervisorConfig `mapstructure:"supervisor"`
	Messages   MessagesConfig   `mapstructure:"messages"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// TelegramConfig holds platform credentials and connection behavior.
type TelegramConfig struct {
	Token              string `mapstructure:"token"                validate:"required"`
	AdminChatID        int64  `mapstructure:"admin_chat_id"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`
}

// DatabaseConfig holds the SQLite settings. An empty Path disables the
// remote store and the service runs cache-only.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig bounds per-user message throughput.
type RateLimitConfig struct {
	MaxMessages int           `mapstructure:"max_messages" validate:"required,gt=0"`
	Window      time.Duration `mapstructure:"window"       validate:"required,min=1s"`
}

// CacheConfig bounds the in-memory message and conversation caches.
// MaxSize 0 disables caching.
type CacheConfig struct {
	MaxSize int           `mapstructure:"max_size" validate:"gte=0"`
	TTL     time.Duration `mapstructure:"ttl"      validate:"required,min=1s"`
}

// SupervisorConfig controls the polling lifecycle and reconnect policy.
type SupervisorConfig struct {
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts" validate:"required,gt=0"`
	ReconnectDelay       time.Duration `mapstructure:"reconnect_delay"        validate:"required,min=1s"`
	PollingInterval      time.Duration `mapstructure:"polling_interval"       validate:"gte=0"`
}

// MessagesConfig holds the user-facing reply texts.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"         validate:"required"`
	Help           string `mapstructure:"help"            validate:"required"`
	RateLimited    string `mapstructure:"rate_limited"    validate:"required"`
	GeneralError   string `mapstructure:"general_error"   validate:"required"`
	ClearConfirm   string `mapstructure:"clear_confirm"   validate:"required"`
	ClearDone      string `mapstructure:"clear_done"      validate:"required"`
	ClearAborted   string `mapstructure:"clear_aborted"   validate:"required"`
	Contact        string `mapstructure:"contact"         validate:"required"`
	EmptyHistory   string `mapstructure:"empty_history"   validate:"required"`
	AckDocument    string `mapstructure:"ack_document"    validate:"required"`
	AckPhoto       string `mapstructure:"ack_photo"       validate:"required"`
	AckAudio       string `mapstructure:"ack_audio"       validate:"required"`
	AckVideo       string `mapstructure:"ack_video"       validate:"required"`
	AckVoice       string `mapstructure:"ack_voice"       validate:"required"`
	AckSticker     string `mapstructure:"ack_sticker"     validate:"required"`
	AckLocation    string `mapstructure:"ack_location"    validate:"required"`
	AckContact     string `mapstructure:"ack_contact"     validate:"required"`
	AckUnsupported string `mapstructure:"ack_unsupported" validate:"required"`
}

// TaskConfig enables and schedules one background task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file
// 3. BOT_* environment variables
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine, defaults plus env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
