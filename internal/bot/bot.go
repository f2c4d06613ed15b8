// Package bot implements the core bot lifecycle: the connection supervisor,
// the task scheduler, and the orchestrator tying them together.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Bot manages the lifecycle of the supervisor and the scheduler.
type Bot struct {
	logger     *slog.Logger
	supervisor *Supervisor
	scheduler  *Scheduler
}

// NewBot creates the orchestrator.
func NewBot(logger *slog.Logger, supervisor *Supervisor, scheduler *Scheduler) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		supervisor: supervisor,
		scheduler:  scheduler,
	}
}

// Run starts polling and the scheduler and blocks until ctx is cancelled,
// then shuts both down.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.supervisor.StartPolling(gCtx)
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping polling...")
		b.supervisor.StopPolling()
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
