package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// RateLimit is a fixed-window limiter keyed by client IP and route, backed
// by Redis. A nil client or a Redis error lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 || window <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.IP(), c.Route().Path)
		allowed, err := allow(c, rdb, key, limit, window)
		if err != nil {
			logger.Warn("rate limit check failed; allowing request", zap.Error(err))
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return apperrors.NewTooManyRequests("too many requests, try again later")
		}
		return c.Next()
	}
}

func allow(c *fiber.Ctx, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	ctx := c.UserContext()
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
