package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/logger"
)

// RateLimiter limits requests per client IP. With a redis client the
// counters are shared between instances; without one each process keeps
// its own token buckets.
type RateLimiter struct {
	redisClient *redis.Client

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client, buckets: make(map[string]*rate.Limiter)}
}

func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.ClientIP())

		allowed := true
		if rl.redisClient != nil {
			var err error
			allowed, err = rl.allowRedis(c, key, limit, window)
			if err != nil {
				logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
				c.Next()
				return
			}
		} else {
			allowed = rl.local(key, limit, window).Allow()
		}

		if !allowed {
			helpers.AbortWithAppError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allowRedis(c *gin.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx := c.Request.Context()
	count, err := rl.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		rl.redisClient.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

func (rl *RateLimiter) local(key string, limit int, window time.Duration) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.buckets[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		rl.buckets[key] = l
	}
	return l
}
