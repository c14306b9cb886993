package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/branchdesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewTokenBucket),
	fx.Provide(NewPaymentLimiter),
)

// NewRedisClient returns nil when no Redis address is configured; the
// limiters treat a nil client as "fail open".
func NewRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
