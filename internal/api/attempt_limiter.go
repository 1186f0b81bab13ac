package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// attemptLimiter counts recent failures per client. Entries expire from the
// cache once a whole window passes without a new failure.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts *cache.Cache
}

func newAttemptLimiter(window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		attempts: cache.New(window, 2*window),
	}
}

func (limiter *attemptLimiter) tooManyRecent(key string, now time.Time, limit int, window time.Duration) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	return len(pruned) >= limit
}

func (limiter *attemptLimiter) addFailure(key string, now time.Time, window time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	pruned = append(pruned, now)
	limiter.attempts.Set(key, pruned, window)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	limiter.attempts.Delete(key)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	cached, found := limiter.attempts.Get(key)
	if !found {
		return []time.Time{}
	}
	values, _ := cached.([]time.Time)

	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		limiter.attempts.Delete(key)
		return []time.Time{}
	}

	limiter.attempts.Set(key, pruned, window)
	return pruned
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
