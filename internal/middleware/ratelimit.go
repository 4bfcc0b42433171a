package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

// RateLimit allows max requests per client IP in each fixed window. Counters
// live in Redis when rdb is set so limits hold across instances; otherwise
// fiber's in-process limiter is used.
func RateLimit(rdb *redis.Client, name string, max int, window time.Duration) fiber.Handler {
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:               max,
			Expiration:        window,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
			LimitReached:      tooManyRequests,
		})
	}

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.IP())

		ctx := c.UserContext()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Fail open; a Redis outage should not take the endpoint down.
			slog.Warn("rate limit check failed", "limiter", name, "error", err)
			return c.Next()
		}
		// The first hit opens the window.
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				slog.Warn("rate limit expiry not set", "limiter", name, "key", key, "error", err)
			}
		}

		if count > int64(max) {
			return tooManyRequests(c)
		}
		return c.Next()
	}
}

func tooManyRequests(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
		Error: "Too many requests, please try again later",
	})
}
