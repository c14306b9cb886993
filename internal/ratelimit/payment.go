package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	paymentRate  = 0.2 // one attempt every five seconds, sustained
	paymentBurst = 5
)

// PaymentLimiter throttles payment submissions per actor. Without Redis
// it fails open; losing the throttle is better than refusing payments.
type PaymentLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
}

func NewPaymentLimiter(bucket *TokenBucket, log *zap.Logger) *PaymentLimiter {
	return &PaymentLimiter{bucket: bucket, log: log.Named("ratelimit.payment")}
}

// Allow reports whether the actor may submit a payment now, and how long
// to wait if not.
func (l *PaymentLimiter) Allow(ctx context.Context, actorKey string) (bool, time.Duration) {
	if l == nil || l.bucket == nil {
		return true, 0
	}

	res, err := l.bucket.Allow(ctx, "ratelimit:payment:"+actorKey, paymentRate, paymentBurst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
