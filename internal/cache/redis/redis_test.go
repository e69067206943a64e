package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/cache"
)

// TestCache_RoundTrip runs against a real Redis when REDIS_ADDR is set.
func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	c := New(cache.Options{RedisURL: addr, DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := "test:h1b:roundtrip"
	if err := c.Set(ctx, key, "payload", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	defer c.Delete(ctx, key)

	var got string
	if err := c.Get(ctx, key, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "payload" {
		t.Errorf("expected payload, got %q", got)
	}

	if err := c.Get(ctx, "test:h1b:missing", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_KeyPrefix(t *testing.T) {
	c := New(cache.Options{RedisURL: "localhost:0"})
	defer c.Close()

	if c.key("h1b:m=wage") != "dataviz:h1b:m=wage" {
		t.Errorf("expected default prefix, got %q", c.key("h1b:m=wage"))
	}

	c = New(cache.Options{RedisURL: "localhost:0", KeyPrefix: "team[a]*:"})
	defer c.Close()
	if got := c.pattern(); got != `team\[a\]\*:*` {
		t.Errorf("expected escaped scan pattern, got %q", got)
	}
}

// TestCache_ClearKeepsForeignKeys runs against a real Redis when REDIS_ADDR is set.
func TestCache_ClearKeepsForeignKeys(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	c := New(cache.Options{RedisURL: addr, DefaultTTL: time.Minute, KeyPrefix: "test-clear:"})
	defer c.Close()
	ctx := context.Background()

	foreign := "test-other-service:keep"
	if err := c.client.Set(ctx, foreign, "theirs", time.Minute).Err(); err != nil {
		t.Fatalf("set foreign key: %v", err)
	}
	defer c.client.Del(ctx, foreign)

	if err := c.Set(ctx, "h1b:a", "ours", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	var got string
	if err := c.Get(ctx, "h1b:a", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected own key cleared, got %v", err)
	}
	if v, err := c.client.Get(ctx, foreign).Result(); err != nil || v != "theirs" {
		t.Errorf("foreign key must survive Clear, got %q, %v", v, err)
	}
}
