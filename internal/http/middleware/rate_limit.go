package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"dare_webapp/internal/logger"
)

var rateLimiter *redis.Client

const (
	rateLimitWindow = time.Minute
	rateLimitMax    = 120
)

// InitRedisRateLimiter connects the limiter backend. An empty address
// disables rate limiting entirely (local development).
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Warn("redis not configured, rate limiting disabled")
		return
	}

	rateLimiter = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rateLimiter.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed, rate limiting disabled", "error", err)
		rateLimiter = nil
	}
}

// RateLimit caps requests per caller per minute. Keys on the
// authenticated user when available, the client IP otherwise. Redis
// being down fails open: the platform stays up without limits.
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP()
		if userID, ok := UserID(c); ok {
			key = fmt.Sprintf("u%d", userID)
		}
		redisKey := "rl:" + key

		ctx := c.Request.Context()
		count, err := rateLimiter.Incr(ctx, redisKey).Result()
		if err != nil {
			logger.Error("rate limiter incr failed", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rateLimiter.Expire(ctx, redisKey, rateLimitWindow)
		}

		if count > rateLimitMax {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
