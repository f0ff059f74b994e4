package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateCounter is the slice of the redis client the login throttle uses.
type rateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// bumpRateWindow counts one hit against key and arms the expiry on the first
// hit, so abandoned counters fall out of redis on their own. Returns the hit
// count within the current window.
func bumpRateWindow(ctx context.Context, client rateCounter, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, window).Err()
	}
	return count, nil
}
