package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if err := c.Set(ctx, "slots:a", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok, err := c.Get(ctx, "slots:a")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != "v1" {
		t.Errorf("expected v1, got %s", v)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 30*time.Second)

	now = now.Add(31 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected entry to be expired")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Set(ctx, "slots:t1:2024-06-01", []byte("a"), time.Minute)
	_ = c.Set(ctx, "slots:t1:2024-06-02", []byte("b"), time.Minute)
	_ = c.Set(ctx, "slots:t2:2024-06-01", []byte("c"), time.Minute)

	_ = c.Delete(ctx, "slots:t1:2024-06-01")
	if _, ok, _ := c.Get(ctx, "slots:t1:2024-06-01"); ok {
		t.Error("expected deleted key to miss")
	}

	if _, ok, _ := c.Get(ctx, "slots:t1:2024-06-02"); !ok {
		t.Error("expected other date key to survive")
	}
	if _, ok, _ := c.Get(ctx, "slots:t2:2024-06-01"); !ok {
		t.Error("expected other tenant key to survive")
	}
}
