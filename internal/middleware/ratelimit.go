package middleware

import (
	"fmt"
	"time"

	"github.com/forexfactory/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitOptions configures a fixed-window limiter.
type RateLimitOptions struct {
	Name   string
	Max    int64
	Window time.Duration
}

// RateLimit allows opts.Max requests per client IP per window. It is a no-op
// without Redis and fails open when Redis errors.
func RateLimit(rdb *redis.Client, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().UnixNano() / int64(opts.Window)
		key := fmt.Sprintf("ff:rate_limit:%s:%s:%d", opts.Name, ip, window)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, opts.Window+time.Second)
		}

		if count > opts.Max {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
