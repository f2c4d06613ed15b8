package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/ArDangerUS/LegalFlowService/internal/config"
)

// Platform is the narrow platform surface the supervisor needs to establish
// a connection.
type Platform interface {
	GetMe(ctx context.Context) (*models.User, error)
	DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error
	SetCommands(ctx context.Context, commands []models.BotCommand) error
}

// Poller runs the blocking update stream. It returns nil when ctx is done
// and an error when the stream fails while ctx is still live.
type Poller interface {
	Run(ctx context.Context) error
}

// Status is a point-in-time snapshot of the connection state.
type Status struct {
	Connected         bool
	Polling           bool
	ReconnectAttempts int
	Identity          string
}

// Supervisor owns the poll lifecycle: initialization, the poll loop, and the
// linear-backoff reconnect policy.
type Supervisor struct {
	platform           Platform
	poller             Poller
	cfg                config.SupervisorConfig
	dropPendingUpdates bool
	commands           []models.BotCommand
	logger             *slog.Logger

	mu          sync.Mutex
	initialized bool
	connected   bool
	polling     bool
	attempts    int
	identity    string
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewSupervisor creates a supervisor over the given platform and poller.
// commands is the command list published during initialization.
func NewSupervisor(
	platform Platform,
	poller Poller,
	cfg config.SupervisorConfig,
	dropPendingUpdates bool,
	commands []models.BotCommand,
	logger *slog.Logger,
) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		platform:           platform,
		poller:             poller,
		cfg:                cfg,
		dropPendingUpdates: dropPendingUpdates,
		commands:           commands,
		logger:             logger.With("component", "supervisor"),
	}
}

// Initialize fetches the bot identity, clears any stale webhook so long
// polling can succeed, and publishes the command list. Identity failure
// fails initialization; webhook and command errors are logged only. A
// successful call marks the connection healthy and resets the reconnect
// counter.
func (s *Supervisor) Initialize(ctx context.Context) error {
	user, err := s.platform.GetMe(ctx)
	if err != nil {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		return fmt.Errorf("failed to initialize connection: %w", err)
	}

	identity := user.Username
	if identity == "" {
		identity = user.FirstName
	}

	s.mu.Lock()
	s.initialized = true
	s.connected = true
	s.attempts = 0
	s.identity = identity
	s.mu.Unlock()

	// Webhook delivery and long polling are mutually exclusive.
	if err := s.platform.DeleteWebhook(ctx, s.dropPendingUpdates); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear webhook, polling may be rejected", "error", err)
	}
	if err := s.platform.SetCommands(ctx, s.commands); err != nil {
		s.logger.WarnContext(ctx, "Failed to register command list", "error", err)
	}

	s.logger.InfoContext(ctx, "Connection initialized", "identity", identity)
	return nil
}

// StartPolling starts the supervised poll loop. Calling it while polling is
// already active is a logged no-op. Initialization and polling failures feed
// the reconnect path instead of propagating.
func (s *Supervisor) StartPolling(ctx context.Context) {
	s.mu.Lock()
	if s.polling {
		s.logger.Info("Polling already active, ignoring start request")
		s.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.polling = true
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.supervise(runCtx, done)
}

// StopPolling stops the poll loop and waits for it to exit. Idempotent and
// safe to call during a reconnect backoff sleep.
func (s *Supervisor) StopPolling() {
	s.mu.Lock()
	if !s.polling {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.polling = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.logger.Info("Polling stopped")
}

// Status returns a snapshot of the connection state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Connected:         s.connected,
		Polling:           s.polling,
		ReconnectAttempts: s.attempts,
		Identity:          s.identity,
	}
}

// supervise drives the poll loop until shutdown or reconnect exhaustion.
func (s *Supervisor) supervise(ctx context.Context, done chan struct{}) {
	defer close(done)

	first := true
	for {
		if ctx.Err() != nil {
			s.clearPolling()
			return
		}

		// Pause between consecutive poller restarts.
		if !first && s.cfg.PollingInterval > 0 {
			if !s.sleep(ctx, s.cfg.PollingInterval) {
				s.clearPolling()
				return
			}
		}
		first = false

		err := s.pollOnce(ctx)
		if ctx.Err() != nil {
			s.clearPolling()
			return
		}
		if err == nil {
			continue
		}

		if !s.scheduleReconnect(ctx, err) {
			return
		}
	}
}

// pollOnce ensures the connection is initialized and runs the poller until
// it stops. A reconnect after a mid-life poll failure does not re-initialize,
// so the attempt counter keeps accumulating until Initialize succeeds on a
// fresh start.
func (s *Supervisor) pollOnce(ctx context.Context) error {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()

	if !initialized {
		if err := s.Initialize(ctx); err != nil {
			return err
		}
	}
	return s.poller.Run(ctx)
}

// scheduleReconnect applies the linear backoff policy after a polling
// failure. It reports whether the supervisor should try again.
func (s *Supervisor) scheduleReconnect(ctx context.Context, cause error) bool {
	s.mu.Lock()
	s.connected = false
	s.attempts++
	attempts := s.attempts
	s.mu.Unlock()

	if attempts >= s.cfg.MaxReconnectAttempts {
		s.logger.ErrorContext(ctx, "Reconnect attempts exhausted, polling stopped for good",
			"attempts", attempts,
			"max_attempts", s.cfg.MaxReconnectAttempts,
			"error", cause)
		s.clearPolling()
		return false
	}

	delay := s.cfg.ReconnectDelay * time.Duration(attempts)
	s.logger.WarnContext(ctx, "Polling failed, reconnecting",
		"attempt", attempts,
		"max_attempts", s.cfg.MaxReconnectAttempts,
		"delay", delay,
		"error", cause)

	if !s.sleep(ctx, delay) {
		s.clearPolling()
		return false
	}
	return true
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Supervisor) clearPolling() {
	s.mu.Lock()
	s.polling = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()
}
