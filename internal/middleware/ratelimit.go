package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"crewz/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// maxLocalBuckets bounds the in-process fallback table; it is cleared when full.
const maxLocalBuckets = 10000

// RateLimiter enforces per-caller request budgets. Counters live in Redis (INCR + EXPIRE) so every
// instance shares them; when Redis is missing or failing, a per-instance token bucket takes over.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter returns a limiter backed by rdb, which may be nil. Limiting is off in the
// development, test and stress environments.
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	enabled := true
	switch env {
	case "", "development", "test", "stress":
		enabled = false
	}
	return &RateLimiter{rdb: rdb, enabled: enabled, local: make(map[string]*rate.Limiter)}
}

// Allow reports whether id may perform one more request against resource.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if !l.enabled || limit <= 0 {
		return true, nil
	}

	if l.rdb != nil {
		allowed, err := l.allowRedis(ctx, resource, id, limit, window)
		if err == nil {
			return allowed, nil
		}
		RedisErrors.WithLabelValues("ratelimit").Inc()
		Logger.WarnContext(ctx, "rate limit store unavailable, using local limiter",
			slog.String("resource", resource), slog.String("error", err.Error()))
	}

	return l.allowLocal(resource, id, limit, window), nil
}

func (l *RateLimiter) allowRedis(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

func (l *RateLimiter) allowLocal(resource, id string, limit int, window time.Duration) bool {
	key := resource + ":" + id

	l.mu.Lock()
	limiter, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalBuckets {
			l.local = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		l.local[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Handler returns a Fiber middleware enforcing limit requests per window. It keys by the
// authenticated user when present, otherwise by remote IP.
func (l *RateLimiter) Handler(limit int, window time.Duration, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := UserID(c); uid != "" {
			id = "user:" + uid
		}

		resource := name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable, models.NewInternalError(err))
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
