package cache

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

func TestGetSet(t *testing.T) {
	t.Parallel()

	c := New[string](10, time.Hour)
	c.now, _ = fixedClock(time.Unix(1000, 0))

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get(k) = %q, %v, want %q, true", got, ok, "v")
	}
}

func TestExpiryOnGet(t *testing.T) {
	t.Parallel()

	c := New[int](10, time.Hour)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("k", 1)
	advance(time.Hour + time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should be reported as absent")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}
}

func TestEvictOldestInserted(t *testing.T) {
	t.Parallel()

	c := New[string](2, 3600*time.Second)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("a", "1")
	advance(time.Second)
	c.Set("b", "2")
	advance(time.Second)
	c.Set("c", "3") // at capacity, nothing expired: "a" goes

	if _, ok := c.Get("a"); ok {
		t.Error("oldest-inserted entry should have been evicted")
	}
	if got, ok := c.Get("c"); !ok || got != "3" {
		t.Errorf("Get(c) = %q, %v, want %q, true", got, ok, "3")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestEvictExpiredFirst(t *testing.T) {
	t.Parallel()

	c := New[string](2, time.Minute)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("old", "1")
	advance(61 * time.Second) // "old" expires
	c.Set("live", "2")
	c.Set("new", "3") // expired "old" goes, "live" survives

	if _, ok := c.Get("live"); !ok {
		t.Error("live entry should survive when an expired one can be evicted")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("newly inserted entry should be present")
	}
}

func TestSetExistingKeyDoesNotEvict(t *testing.T) {
	t.Parallel()

	c := New[string](2, time.Hour)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("a", "1")
	advance(time.Second)
	c.Set("b", "2")
	advance(time.Second)
	c.Set("a", "updated") // overwrite in place, no eviction

	if _, ok := c.Get("b"); !ok {
		t.Error("overwriting an existing key must not evict others")
	}
	if got, _ := c.Get("a"); got != "updated" {
		t.Errorf("Get(a) = %q, want %q", got, "updated")
	}
}

func TestZeroMaxSizeDisables(t *testing.T) {
	t.Parallel()

	c := New[string](0, time.Hour)
	c.Set("k", "v")

	if _, ok := c.Get("k"); ok {
		t.Error("cache with max size 0 must not store anything")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New[int](10, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be absent")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestValuesSkipsExpired(t *testing.T) {
	t.Parallel()

	c := New[int](10, time.Minute)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("stale", 1)
	advance(61 * time.Second)
	c.Set("fresh", 2)

	values := c.Values()
	if len(values) != 1 || values[0] != 2 {
		t.Errorf("Values() = %v, want [2]", values)
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	c := New[int](10, time.Minute)
	now, advance := fixedClock(time.Unix(1000, 0))
	c.now = now

	c.Set("a", 1)
	c.Set("b", 2)
	advance(30 * time.Second)
	c.Set("c", 3)
	advance(31 * time.Second) // a and b expired, c still live

	if removed := c.Sweep(); removed != 2 {
		t.Errorf("Sweep() = %d, want 2", removed)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("live entry must survive Sweep")
	}
}
