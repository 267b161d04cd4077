package store

import (
	"context"
	"time"

	"github.com/go-redis/redis/v9"
)

// RedisGuard implements DeliveryGuard with a SETNX idempotency key per
// delivery, so duplicate deliveries of the same trigger within TTL are
// dropped instead of double-counting non-idempotent aggregates. It fails
// open: if redis is unreachable, the delivery goes through.
type RedisGuard struct {
	Redis  *redis.Client
	TTL    time.Duration
	Logger logger
}

func (g RedisGuard) FirstDelivery(ctx context.Context, key string) bool {
	first, err := g.Redis.SetNX(ctx, "delivery-"+key, 1, g.TTL).Result()
	if err != nil {
		g.Logger.Errorf("FirstDelivery: Error setting idempotency key: %s, err: %v", key, err)
		return true
	}
	return first
}
