package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterStore holds one token bucket per key and evicts buckets that went idle.
type RateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewRateLimiterStore creates a store whose buckets refill at rps and hold at most burst tokens.
func NewRateLimiterStore(rps float64, burst int) *RateLimiterStore {
	return &RateLimiterStore{
		rps:     rps,
		burst:   burst,
		idleTTL: time.Hour,
		now:     time.Now,
	}
}

// Allow consumes one token from key's bucket. When the bucket is empty it returns false and the
// delay until the next token.
func (s *RateLimiterStore) Allow(key string) (bool, time.Duration) {
	now := s.now()
	limiter := s.getLimiter(key, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	reservation.CancelAt(now)
	return false, delay
}

// getLimiter retrieves or creates the limiter for key.
func (s *RateLimiterStore) getLimiter(key string, now time.Time) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*rateLimiterEntry).limiter
}

// Run evicts idle limiters every interval until ctx is done.
func (s *RateLimiterStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

// evictIdle removes limiters not accessed within idleTTL.
func (s *RateLimiterStore) evictIdle() {
	threshold := s.now().Add(-s.idleTTL)
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*rateLimiterEntry)
		entry.mu.Lock()
		shouldDelete := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if shouldDelete {
			s.limiters.Delete(key)
		}
		return true
	})
}

// KeyFunc extracts the throttling key of a request. Returning false skips throttling.
type KeyFunc func(c *gin.Context) (string, bool)

// ClientIPKey throttles by client IP.
func ClientIPKey(c *gin.Context) (string, bool) {
	return c.ClientIP(), true
}

// AdminTokenKey throttles by authenticated admin token. It must run after AdminAuthMiddleware.
func AdminTokenKey(c *gin.Context) (string, bool) {
	token, ok := GetAdminToken(c.Request.Context())
	if !ok || token == nil {
		return "", false
	}
	return token.ID.String(), true
}

// RateLimitMiddleware enforces store's token bucket per key.
//
// Returns:
//   - 429 Too Many Requests with a Retry-After header when the bucket is empty
//   - Continues otherwise
func RateLimitMiddleware(store *RateLimiterStore, keyFunc KeyFunc, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := keyFunc(c)
		if !ok {
			c.Next()
			return
		}

		allowed, retryAfter := store.Allow(key)
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			logger.Debug("request throttled",
				slog.String("path", c.FullPath()),
				slog.Int("retry_after", seconds))

			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}
