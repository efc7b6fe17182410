package cache

import (
	"testing"
	"time"
)

func TestTTLCacheStoresAndExpires(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Hour)
	if got, ok := c.Get("a"); !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v", got, ok)
	}

	c.Set("b", 2, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if _, ok := c.Get("b"); ok {
		t.Fatal("expired entry should miss")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("k", "v", 0)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v", got, ok)
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Hour)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry should miss")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Hour)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache should always miss")
	}
}
