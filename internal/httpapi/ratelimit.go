package httpapi

import (
	"net/http"

	"ordermesh/internal/reliability"
)

// RateLimit returns middleware that holds each request until the limiter
// grants a token. A request whose context ends while waiting is answered
// with 503 instead of reaching the handler.
func RateLimit(limiter *reliability.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Wait(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "rate_limited", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
