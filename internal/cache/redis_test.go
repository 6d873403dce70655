package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupCache(t *testing.T) *RedisCache {
	t.Helper()

	srv := miniredis.RunT(t)
	c := NewRedisCacheFromAddr(srv.Addr())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "leaderboard", `[{"user_id":1}]`, time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	val, err := c.Get(ctx, "leaderboard")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != `[{"user_id":1}]` {
		t.Errorf("Unexpected cached value: %q", val)
	}
}

func TestRedisCache_Get_Missing(t *testing.T) {
	c := setupCache(t)

	val, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty string for missing key, got %q", val)
	}
}

func TestRedisCache_Del(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", time.Minute)
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del() failed: %v", err)
	}

	val, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() after Del failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected key to be deleted, got %q", val)
	}
}

func TestRedisCache_Health(t *testing.T) {
	c := setupCache(t)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() failed: %v", err)
	}
}
