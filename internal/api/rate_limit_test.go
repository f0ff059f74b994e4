package api

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRateCounter struct {
	counts      map[string]int64
	expires     map[string]time.Duration
	expireCalls int
}

func newFakeRateCounter() *fakeRateCounter {
	return &fakeRateCounter{
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeRateCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeRateCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expireCalls++
	f.expires[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func TestBumpRateWindow(t *testing.T) {
	ctx := context.Background()
	counter := newFakeRateCounter()
	key := "rate:login:10.0.0.1:budi:2026082812"

	for i := 1; i <= 3; i++ {
		count, err := bumpRateWindow(ctx, counter, key, time.Hour)
		if err != nil {
			t.Fatalf("bump %d: %v", i, err)
		}
		if count != int64(i) {
			t.Fatalf("count = %d, want %d", count, i)
		}
	}

	// The window expiry is armed exactly once, on the first hit.
	if counter.expireCalls != 1 {
		t.Errorf("expire called %d times, want 1", counter.expireCalls)
	}
	if d := counter.expires[key]; d != time.Hour {
		t.Errorf("expire window = %v, want %v", d, time.Hour)
	}
}
