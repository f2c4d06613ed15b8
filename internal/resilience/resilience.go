// Package resilience wraps remote operations with bounded retries and a
// circuit breaker. The breaker guards the message store so a dead backend
// fails fast instead of stalling every handler on its timeout.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrCircuitOpen is returned while the breaker refuses calls.
	ErrCircuitOpen = gobreaker.ErrOpenState
	// ErrExhaustedRetries wraps the last error once all attempts failed.
	ErrExhaustedRetries = errors.New("retry attempts exhausted")
)

// BreakerConfig configures a Breaker. Zero values get sensible defaults.
type BreakerConfig struct {
	Name          string
	MaxFailures   int           // consecutive failures before opening
	CallTimeout   time.Duration // per-call deadline applied when ctx has none
	ResetInterval time.Duration // open duration before probing half-open
}

// Breaker is a circuit breaker with a per-call timeout.
type Breaker struct {
	callTimeout time.Duration
	cb          *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker that opens after MaxFailures consecutive
// failures and probes again after ResetInterval.
func NewBreaker(cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.ResetInterval,
		Timeout:     cfg.ResetInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
	}
	if logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		}
	}

	return &Breaker{
		callTimeout: cfg.CallTimeout,
		cb:          gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs op through the breaker, applying the per-call timeout when the
// incoming context carries no deadline.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}

	_, err := b.cb.Execute(func() (any, error) {
		return nil, op(ctx)
	})
	return err
}

// RetryConfig configures WithRetry.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	RandomFactor    float64
}

// DefaultRetryConfig returns the retry policy used for store reads.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		RandomFactor:    0.1,
	}
}

// WithRetry runs op up to MaxAttempts times with jittered exponential
// backoff. The sleep between attempts is interruptible through ctx. An open
// circuit aborts immediately; success returns nil.
func WithRetry(ctx context.Context, op func(context.Context) error, cfg RetryConfig) error {
	var lastErr error
	interval := cfg.InitialInterval
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("retry abandoned: %w", ctx.Err())
		}
		if errors.Is(err, ErrCircuitOpen) {
			return err
		}

		if attempt < cfg.MaxAttempts {
			jitter := 1.0 + cfg.RandomFactor*(2*rnd.Float64()-1)
			interval = time.Duration(float64(interval) * cfg.Multiplier * jitter)
			if interval > cfg.MaxInterval {
				interval = cfg.MaxInterval
			}

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry abandoned: %w", ctx.Err())
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrExhaustedRetries, cfg.MaxAttempts, lastErr)
}
