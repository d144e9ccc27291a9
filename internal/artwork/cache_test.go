package artwork

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(10, time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Set("img1", "data:image/jpeg;base64,AAAA")

	value, ok := c.Get("img1")
	if !ok {
		t.Fatal("Get() after Set() reported a miss")
	}
	if value != "data:image/jpeg;base64,AAAA" {
		t.Errorf("Get() = %q, want stored value", value)
	}
	if !c.Has("img1") {
		t.Error("Has() = false for resident entry")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCache_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(3, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch "a" so "b" becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) reported a miss")
	}

	c.Set("d", "4")

	if c.Has("b") {
		t.Error("expected b to be evicted as least recently used")
	}
	if !c.Has("a") {
		t.Error("expected a to survive: Get before the triggering Set protects it")
	}
	if !c.Has("c") || !c.Has("d") {
		t.Error("expected c and d to be resident")
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestCache_SetExistingRefreshesLRU(t *testing.T) {
	c := NewCache(2, time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "1-updated") // refresh: "b" is now least recently used
	c.Set("c", "3")

	if c.Has("b") {
		t.Error("expected b to be evicted after a was refreshed")
	}
	value, ok := c.Get("a")
	if !ok || value != "1-updated" {
		t.Errorf("Get(a) = %q, %v; want refreshed value", value, ok)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	ttl := time.Hour
	c := NewCache(10, ttl)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("img1", "value")

	// Just inside the TTL: present. Has does not restart the clock.
	c.now = func() time.Time { return base.Add(ttl - time.Second) }
	if !c.Has("img1") {
		t.Error("entry inside TTL reported as absent")
	}

	// Just past the TTL: absent, and deleted by the lookup.
	c.now = func() time.Time { return base.Add(ttl + time.Second) }
	if _, ok := c.Get("img1"); ok {
		t.Error("entry past TTL reported as present")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after lazy expiry, want 0", c.Size())
	}
}

func TestCache_GetHitRefreshesTimestamp(t *testing.T) {
	ttl := time.Minute
	c := NewCache(10, ttl)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("img1", "value")

	// A hit near expiry restarts the clock.
	c.now = func() time.Time { return base.Add(ttl - time.Second) }
	if _, ok := c.Get("img1"); !ok {
		t.Fatal("Get() inside TTL reported a miss")
	}

	c.now = func() time.Time { return base.Add(ttl + 30*time.Second) }
	if !c.Has("img1") {
		t.Error("expected entry refreshed by Get() to still be present")
	}
}

func TestCache_HasExpiresLazily(t *testing.T) {
	ttl := time.Minute
	c := NewCache(10, ttl)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("img1", "value")

	c.now = func() time.Time { return base.Add(2 * ttl) }
	if c.Has("img1") {
		t.Error("Has() = true for expired entry")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Has() expiry, want 0", c.Size())
	}
}

func TestCache_SetRefreshesTimestamp(t *testing.T) {
	ttl := time.Minute
	c := NewCache(10, ttl)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("img1", "value")

	// Re-set near expiry: timestamp restarts.
	c.now = func() time.Time { return base.Add(ttl - time.Second) }
	c.Set("img1", "value")

	c.now = func() time.Time { return base.Add(ttl + 30*time.Second) }
	if !c.Has("img1") {
		t.Error("expected refreshed entry to still be present")
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(10, time.Hour)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("img%d", i), "value")
	}
	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size() = %d after Clear(), want 0", c.Size())
	}
	if c.Has("img0") {
		t.Error("Has() = true after Clear()")
	}

	// Cache remains usable after Clear.
	c.Set("img9", "value")
	if !c.Has("img9") {
		t.Error("Set() after Clear() did not store")
	}
}
