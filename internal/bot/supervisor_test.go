package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/ArDangerUS/LegalFlowService/internal/config"
)

type fakePlatform struct {
	mu         sync.Mutex
	getMeErr   error
	getMeCalls int
}

func (p *fakePlatform) GetMe(context.Context) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getMeCalls++
	if p.getMeErr != nil {
		return nil, p.getMeErr
	}
	return &models.User{ID: 1, Username: "legalflow_bot", FirstName: "LegalFlow"}, nil
}

func (p *fakePlatform) DeleteWebhook(context.Context, bool) error { return nil }

func (p *fakePlatform) SetCommands(context.Context, []models.BotCommand) error { return nil }

func (p *fakePlatform) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getMeCalls
}

// blockingPoller runs until its context is cancelled.
type blockingPoller struct {
	mu   sync.Mutex
	runs int
}

func (p *blockingPoller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (p *blockingPoller) runCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

// failingPoller fails immediately on every run.
type failingPoller struct {
	mu   sync.Mutex
	runs int
}

func (p *failingPoller) Run(context.Context) error {
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
	return errors.New("stream broken")
}

func (p *failingPoller) runCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

func testSupervisorConfig() config.SupervisorConfig {
	return config.SupervisorConfig{
		MaxReconnectAttempts: 2,
		ReconnectDelay:       time.Millisecond,
		PollingInterval:      0,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}
	s := NewSupervisor(platform, &blockingPoller{}, testSupervisorConfig(), true, nil, nil)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() = %v, want nil", err)
	}

	status := s.Status()
	if !status.Connected {
		t.Error("status should report connected after Initialize")
	}
	if status.Identity != "legalflow_bot" {
		t.Errorf("identity = %q, want legalflow_bot", status.Identity)
	}
	if status.ReconnectAttempts != 0 {
		t.Errorf("reconnect attempts = %d, want 0", status.ReconnectAttempts)
	}
}

func TestInitializeIdentityFailure(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{getMeErr: errors.New("network down")}
	s := NewSupervisor(platform, &blockingPoller{}, testSupervisorConfig(), true, nil, nil)

	if err := s.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() should fail when identity retrieval fails")
	}
	if s.Status().Connected {
		t.Error("status must not report connected after a failed Initialize")
	}
}

func TestStartPollingIdempotent(t *testing.T) {
	t.Parallel()

	poller := &blockingPoller{}
	s := NewSupervisor(&fakePlatform{}, poller, testSupervisorConfig(), true, nil, nil)

	ctx := context.Background()
	s.StartPolling(ctx)
	waitFor(t, "poller start", func() bool { return poller.runCount() == 1 })

	s.StartPolling(ctx) // no-op
	time.Sleep(10 * time.Millisecond)
	if got := poller.runCount(); got != 1 {
		t.Errorf("poller ran %d times after double start, want 1", got)
	}

	s.StopPolling()
	if s.Status().Polling {
		t.Error("polling flag should be cleared after StopPolling")
	}
}

func TestReconnectExhaustion(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}
	poller := &failingPoller{}
	s := NewSupervisor(platform, poller, testSupervisorConfig(), true, nil, nil)

	s.StartPolling(context.Background())
	waitFor(t, "reconnect exhaustion", func() bool { return !s.Status().Polling })

	status := s.Status()
	if status.ReconnectAttempts != 2 {
		t.Errorf("reconnect attempts = %d, want 2", status.ReconnectAttempts)
	}
	if got := poller.runCount(); got != 2 {
		t.Errorf("poller ran %d times, want 2 (no third attempt)", got)
	}
	// The connection is initialized once on start, not again per reconnect.
	if got := platform.calls(); got != 1 {
		t.Errorf("identity fetched %d times, want 1", got)
	}

	// Exhaustion is terminal until polling is explicitly restarted.
	time.Sleep(10 * time.Millisecond)
	if got := poller.runCount(); got != 2 {
		t.Errorf("poller restarted after exhaustion, runs = %d", got)
	}
}

func TestStopPollingInterruptsBackoff(t *testing.T) {
	t.Parallel()

	cfg := config.SupervisorConfig{
		MaxReconnectAttempts: 5,
		ReconnectDelay:       time.Hour,
	}
	poller := &failingPoller{}
	s := NewSupervisor(&fakePlatform{}, poller, cfg, true, nil, nil)

	s.StartPolling(context.Background())
	waitFor(t, "first poll failure", func() bool { return poller.runCount() == 1 })

	stopped := make(chan struct{})
	go func() {
		s.StopPolling()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("StopPolling did not interrupt the backoff sleep")
	}
	if s.Status().Polling {
		t.Error("polling flag should be cleared")
	}
}

func TestStopThenStartPolling(t *testing.T) {
	t.Parallel()

	poller := &blockingPoller{}
	s := NewSupervisor(&fakePlatform{}, poller, testSupervisorConfig(), true, nil, nil)

	ctx := context.Background()
	s.StartPolling(ctx)
	waitFor(t, "poller start", func() bool { return poller.runCount() == 1 })
	s.StopPolling()

	s.StartPolling(ctx)
	waitFor(t, "poller restart", func() bool { return poller.runCount() == 2 })
	if !s.Status().Polling {
		t.Error("polling flag should be set after restart")
	}
	s.StopPolling()
}

func TestStopPollingIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(&fakePlatform{}, &blockingPoller{}, testSupervisorConfig(), true, nil, nil)

	// Never started; both calls are no-ops.
	s.StopPolling()
	s.StopPolling()
	if s.Status().Polling {
		t.Error("polling flag should stay cleared")
	}
}
