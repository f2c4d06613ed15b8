package ratelimit

import (
	"testing"
	"time"
)

// fixedClock returns a settable clock function for deterministic tests.
func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	now := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return now, advance
}

func TestAllowBurst(t *testing.T) {
	t.Parallel()

	l := NewLimiter(3, 60*time.Second)
	l.now, _ = fixedClock(time.Unix(1000, 0))

	expected := []bool{true, true, true, false}
	for i, want := range expected {
		if got := l.Allow("u1"); got != want {
			t.Errorf("call %d: Allow() = %v, want %v", i+1, got, want)
		}
	}
}

func TestAllowWindowSlides(t *testing.T) {
	t.Parallel()

	l := NewLimiter(2, 60*time.Second)
	now, advance := fixedClock(time.Unix(1000, 0))
	l.now = now

	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatal("first two calls should be admitted")
	}
	if l.Allow("u1") {
		t.Fatal("third call inside the window should be rejected")
	}

	// Once the first instant ages out, one slot frees up.
	advance(61 * time.Second)
	if !l.Allow("u1") {
		t.Error("call after window expiry should be admitted")
	}
}

func TestRejectionNotRecorded(t *testing.T) {
	t.Parallel()

	l := NewLimiter(1, 60*time.Second)
	now, advance := fixedClock(time.Unix(1000, 0))
	l.now = now

	l.Allow("u1")
	for range 10 {
		l.Allow("u1") // all rejected, none recorded
	}

	advance(61 * time.Second)
	if !l.Allow("u1") {
		t.Error("rejected calls must not extend the window")
	}
}

func TestKeysIndependent(t *testing.T) {
	t.Parallel()

	l := NewLimiter(1, 60*time.Second)
	l.now, _ = fixedClock(time.Unix(1000, 0))

	if !l.Allow("a") {
		t.Error("first call for key a should be admitted")
	}
	if !l.Allow("b") {
		t.Error("key b must not be affected by key a")
	}
	if l.Allow("a") {
		t.Error("second call for key a should be rejected")
	}
}

func TestResetTime(t *testing.T) {
	t.Parallel()

	start := time.Unix(1000, 0)
	l := NewLimiter(3, 60*time.Second)
	now, advance := fixedClock(start)
	l.now = now

	if _, ok := l.ResetTime("u1"); ok {
		t.Error("ResetTime for unknown key should report ok=false")
	}

	l.Allow("u1")
	advance(10 * time.Second)
	l.Allow("u1")

	reset, ok := l.ResetTime("u1")
	if !ok {
		t.Fatal("ResetTime should report ok=true after recorded requests")
	}
	if want := start.Add(60 * time.Second); !reset.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", reset, want)
	}

	// After everything expires the key has no live requests again.
	advance(61 * time.Second)
	if _, ok := l.ResetTime("u1"); ok {
		t.Error("ResetTime should report ok=false once all requests expired")
	}
}

func TestPurgeIdle(t *testing.T) {
	t.Parallel()

	l := NewLimiter(5, 60*time.Second)
	now, advance := fixedClock(time.Unix(1000, 0))
	l.now = now

	l.Allow("stale")
	advance(30 * time.Second)
	l.Allow("fresh")
	advance(31 * time.Second) // "stale" expired, "fresh" still live

	if removed := l.PurgeIdle(); removed != 1 {
		t.Errorf("PurgeIdle() = %d, want 1", removed)
	}
	if _, ok := l.ResetTime("fresh"); !ok {
		t.Error("live key must survive PurgeIdle")
	}
}
