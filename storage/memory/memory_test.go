package memory

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/ggoodman/mcp-stdio-server/storage"
)

func newStore(t *testing.T, max int) *Storage {
	t.Helper()
	s, err := New(max)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGlobalStorage(t *testing.T) {
	s := newStore(t, 100)
	ctx := context.Background()

	if err := s.Set(ctx, "test-key", []byte("test-data")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	item, err := s.Get(ctx, "test-key")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if item == nil {
		t.Fatal("Get() returned nil item")
	}
	if string(item.Data) != "test-data" {
		t.Fatalf("Get() returned wrong data: got %s", item.Data)
	}
}

func TestSetCopiesData(t *testing.T) {
	s := newStore(t, 10)
	ctx := context.Background()

	buf := []byte("abc")
	if err := s.Set(ctx, "k", buf); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	buf[0] = 'x'
	item, _ := s.Get(ctx, "k")
	if string(item.Data) != "abc" {
		t.Fatalf("stored data aliased caller buffer: %s", item.Data)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	s := newStore(t, 100)
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("a"), storage.WithNamespace("one"))
	_ = s.Set(ctx, "k", []byte("b"), storage.WithNamespace("two"))

	a, _ := s.Get(ctx, "k", storage.WithNamespace("one"))
	b, _ := s.Get(ctx, "k", storage.WithNamespace("two"))
	if a == nil || b == nil || string(a.Data) != "a" || string(b.Data) != "b" {
		t.Fatalf("namespaces leaked: a=%v b=%v", a, b)
	}
	if g, _ := s.Get(ctx, "k"); g != nil {
		t.Fatalf("global namespace should be empty, got %s", g.Data)
	}
}

func TestInvalidNamespace(t *testing.T) {
	s := newStore(t, 10)
	if err := s.Set(context.Background(), "k", nil, storage.WithNamespace("a:b")); err != storage.ErrInvalidOptions {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestTTL(t *testing.T) {
	s := newStore(t, 10)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), storage.WithTTL(20*time.Millisecond)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if item, _ := s.Get(ctx, "k"); item == nil || item.ExpiresAt == nil {
		t.Fatalf("expected live item with expiry, got %+v", item)
	}
	time.Sleep(40 * time.Millisecond)
	if item, _ := s.Get(ctx, "k"); item != nil {
		t.Fatalf("expected expired item to be gone, got %s", item.Data)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expired key still listed: %v", keys)
	}
}

func TestDeleteKeyAndNamespace(t *testing.T) {
	s := newStore(t, 100)
	ctx := context.Background()
	ns := storage.WithNamespace("ws")

	for _, k := range []string{"b", "a", "c"} {
		_ = s.Set(ctx, k, []byte(k), ns)
	}
	_ = s.Set(ctx, "keep", []byte("x"))

	keys, err := s.Keys(ctx, ns)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Fatalf("Keys() = %v", keys)
	}

	if err := s.Delete(ctx, ns, storage.WithKey("b")); err != nil {
		t.Fatalf("Delete(key) failed: %v", err)
	}
	keys, _ = s.Keys(ctx, ns)
	if !slices.Equal(keys, []string{"a", "c"}) {
		t.Fatalf("after delete Keys() = %v", keys)
	}

	if err := s.Delete(ctx, ns); err != nil {
		t.Fatalf("Delete(namespace) failed: %v", err)
	}
	if keys, _ = s.Keys(ctx, ns); len(keys) != 0 {
		t.Fatalf("namespace not cleared: %v", keys)
	}
	if item, _ := s.Get(ctx, "keep"); item == nil {
		t.Fatal("namespace delete removed a global key")
	}
}

func TestEviction(t *testing.T) {
	s := newStore(t, 2)
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"))
	_ = s.Set(ctx, "b", []byte("2"))
	_ = s.Set(ctx, "c", []byte("3"))

	if item, _ := s.Get(ctx, "a"); item != nil {
		t.Fatal("least recently used key should have been evicted")
	}
	if item, _ := s.Get(ctx, "c"); item == nil {
		t.Fatal("newest key missing")
	}
}
