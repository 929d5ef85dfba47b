package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CounterStore is the subset of redis commands the limiter needs.
type CounterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type RateLimiter struct {
	store CounterStore
	log   *zap.Logger
}

func NewRateLimiter(store CounterStore, log *zap.Logger) *RateLimiter {
	return &RateLimiter{store: store, log: log}
}

// Limit allows at most limit requests per client IP within window. Redis
// failures let the request through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.ClientIP())

		count, err := rl.store.Incr(ctx, key).Result()
		if err != nil {
			rl.log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		// Set on every hit so a window whose first expire failed still closes.
		if err := rl.store.ExpireNX(ctx, key, window).Err(); err != nil {
			rl.log.Warn("rate limiter expire failed", zap.String("key", key), zap.Error(err))
		}

		if count > int64(limit) {
			ttl, err := rl.store.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				ttl = window
			}
			retry := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", fmt.Sprint(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
