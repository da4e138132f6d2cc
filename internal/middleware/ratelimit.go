package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limit counters.
const RateLimitKeyPrefix = "twohearts:ratelimit:"

// RateLimiter counts requests per client IP in fixed Redis windows.
type RateLimiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter allows max requests per window for each client IP.
func NewRateLimiter(rdb redis.Cmdable, max int, window time.Duration, log *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{rdb: rdb, max: max, window: window, log: log, now: time.Now}
}

// Middleware rejects requests over the budget with 429. Redis failures let
// the request through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		bucket := l.now().UnixNano() / int64(l.window)
		key := fmt.Sprintf("%s%s:%s:%d", RateLimitKeyPrefix, r.URL.Path, ip, bucket)

		ctx := r.Context()
		count, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			l.log.Warn("rate limiter unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := l.rdb.PExpire(ctx, key, l.window+time.Second).Err(); err != nil {
				l.log.Warn("rate limit key has no expiry", zap.String("key", key), zap.Error(err))
			}
		}

		remaining := l.max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(l.max) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
