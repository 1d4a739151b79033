package httptransport

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"shopgenie/pkg/platform/middleware/metadata"
)

// rateLimiter throttles requests per client IP. Limiters are created lazily
// and kept for the process lifetime; the client population of a dashboard is
// small enough that eviction is not worth the bookkeeping.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *rateLimiter) limiterFor(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[clientIP] = limiter
	}
	return limiter
}

// RateLimit rejects clients that exceed the configured request rate with a
// 429 before any handler work happens.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	rl := newRateLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := metadata.ClientIPFromRequest(r)
			if !rl.limiterFor(clientIP).Allow() {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
