// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/confirmgate/internal/log"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in the window.
	// A non-positive limit disables limiting.
	RequestLimit int
	// WindowSize defaults to one minute.
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key from the request; nil means client IP.
	KeyFunc httprate.KeyFunc
}

// RateLimit creates a sliding window rate limiting middleware.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(cfg.KeyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithComponentFromContext(r.Context(), "ratelimit")
			logger.Warn().
				Str(log.FieldEvent, "ratelimit.rejected").
				Str(log.FieldPath, r.URL.Path).
				Int("limit", cfg.RequestLimit).
				Msg("request rate limited")

			w.Header().Set("Retry-After", retryAfter)
			writeProblem(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		}),
	)
}

// DialogRateLimit limits dialog signal and form requests to rpm per client IP.
func DialogRateLimit(rpm int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{RequestLimit: rpm, WindowSize: time.Minute})
}
