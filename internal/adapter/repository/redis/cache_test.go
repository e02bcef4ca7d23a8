package redis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBalanceCacheSetGet(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewBalanceCache(client)
	ctx := context.Background()

	balance := decimal.RequireFromString("1234.56")
	if err := cache.Set(ctx, "la-1", balance, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "la-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if !got.Equal(balance) {
		t.Fatalf("expected %s, got %s", balance, got)
	}
}

func TestBalanceCacheMiss(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewBalanceCache(client)

	got, ok, err := cache.Get(context.Background(), "la-missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss")
	}
	if !got.IsZero() {
		t.Fatalf("expected zero on miss, got %s", got)
	}
}

func TestBalanceCacheCorruptValueReadsAsMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewBalanceCache(client)

	if err := mr.Set("balance:la-1", "not-a-number"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, ok, err := cache.Get(context.Background(), "la-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected corrupt value to read as miss")
	}
}

func TestBalanceCacheDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewBalanceCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "la-1", decimal.NewFromInt(10), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.Set(ctx, "la-2", decimal.NewFromInt(20), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "la-1", "la-2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, id := range []string{"la-1", "la-2"} {
		_, ok, err := cache.Get(ctx, id)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if ok {
			t.Fatalf("expected %s to be deleted", id)
		}
	}
}

func TestBalanceCacheDeleteNoKeys(t *testing.T) {
	client, _ := newTestRedisClient(t)
	cache := NewBalanceCache(client)

	if err := cache.Delete(context.Background()); err != nil {
		t.Fatalf("delete with no keys failed: %v", err)
	}
}

func TestBalanceCacheTTLExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	cache := NewBalanceCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "la-1", decimal.NewFromInt(5), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "la-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected key to expire")
	}
}
