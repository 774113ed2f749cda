package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	t.Parallel()

	c := New(0, 0, 0)
	if got := c.Get("missing"); got != nil {
		t.Fatalf("Get(missing)=%v, want nil", got)
	}

	c.Put("k", []byte("value"))
	if got := c.Get("k"); !bytes.Equal(got, []byte("value")) {
		t.Fatalf("Get(k)=%q, want value", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	c := New(0, 0, 0)
	c.Put("k", []byte("abc"))

	got := c.Get("k")
	got[0] = 'z'
	if again := c.Get("k"); !bytes.Equal(again, []byte("abc")) {
		t.Fatalf("stored value mutated through returned slice: %q", again)
	}
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()

	c := New(0, 0, 0)
	c.PutTTL("k", []byte("v"), 10*time.Millisecond)

	if got := c.Get("k"); got == nil {
		t.Fatal("fresh entry, want a hit")
	}
	time.Sleep(25 * time.Millisecond)
	if got := c.Get("k"); got != nil {
		t.Fatalf("expired entry, got %q, want nil", got)
	}
}

func TestLRUEvictionByItems(t *testing.T) {
	t.Parallel()

	c := New(2, 0, 0)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3"))

	if got := c.Get("a"); got != nil {
		t.Fatalf("Get(a)=%q, want evicted", got)
	}
	if c.Get("b") == nil || c.Get("c") == nil {
		t.Fatal("b and c should survive")
	}
}

func TestLRUTouchOnGet(t *testing.T) {
	t.Parallel()

	c := New(2, 0, 0)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	// Touch a so b becomes the eviction candidate.
	c.Get("a")
	c.Put("c", []byte("3"))

	if c.Get("a") == nil {
		t.Fatal("a was touched, want it to survive")
	}
	if got := c.Get("b"); got != nil {
		t.Fatalf("Get(b)=%q, want evicted", got)
	}
}

func TestEvictionByBytes(t *testing.T) {
	t.Parallel()

	c := New(0, 10, 0)
	c.Put("a", []byte("12345678"))
	c.Put("b", []byte("12345678"))

	if c.Len() != 1 {
		t.Fatalf("Len=%d, want 1 after byte-pressure eviction", c.Len())
	}
	if c.Get("b") == nil {
		t.Fatal("newest entry should survive")
	}
}

func TestDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := New(0, 0, 0)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	c.Delete("a")
	if c.Get("a") != nil {
		t.Fatal("deleted entry still present")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len=%d after Clear, want 0", c.Len())
	}
	if s := c.Stats(); s.Bytes != 0 {
		t.Fatalf("Bytes=%d after Clear, want 0", s.Bytes)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	c := New(1, 0, 0)
	c.Put("a", []byte("1"))
	c.Get("a")       // hit
	c.Get("missing") // miss
	c.Put("b", []byte("2")) // evicts a

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("hits=%d misses=%d, want 1/1", s.Hits, s.Misses)
	}
	if s.Evictions != 1 {
		t.Fatalf("evictions=%d, want 1", s.Evictions)
	}
	if s.Items != 1 {
		t.Fatalf("items=%d, want 1", s.Items)
	}
}
