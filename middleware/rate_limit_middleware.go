package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"campusmatch/cache"
	"campusmatch/logger"
	"campusmatch/utils/errors"
)

// RateLimitMiddleware enforces a fixed-window request cap per client IP,
// counted in Redis so all instances share the window. Redis being down
// lets traffic through; availability beats throttling here.
func RateLimitMiddleware(rc *cache.RedisCache, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + clientIP(r)
			ctx := r.Context()

			count, err := rc.Client.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rc.Client.Expire(ctx, key, window).Err(); err != nil {
					logger.Warn("failed to set rate limit window", "err", err)
				}
			}
			if count > int64(max) {
				WriteError(w, errors.NewAPIError("RATE_LIMITED", "Too many requests, please try again later", http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
