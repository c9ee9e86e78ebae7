package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/inkwellhq/inkwell/internal/http/response"
	"github.com/inkwellhq/inkwell/internal/observability"
)

// RateLimiter is a per-client token bucket applied to the general API
// surface. The auth endpoints deliberately carry no limiter.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
	limit   int
	window  time.Duration
	refill  float64
	scope   string
	cleanup time.Time
}

type bucketState struct {
	tokens     float64
	lastRefill time.Time
}

func NewRateLimiter(limit int, window time.Duration, scope string) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if scope == "" {
		scope = "api"
	}
	return &RateLimiter{
		buckets: make(map[string]*bucketState),
		limit:   limit,
		window:  window,
		refill:  float64(limit) / window.Seconds(),
		scope:   scope,
		cleanup: time.Now().Add(window),
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, retryAfter := rl.allow(clientIPKey(r))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			if !allowed {
				observability.RecordRateLimitDecision(r.Context(), rl.scope, "deny")
				w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
				response.Message(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			observability.RecordRateLimitDecision(r.Context(), rl.scope, "allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, b := range rl.buckets {
			if now.Sub(b.lastRefill) > 2*rl.window {
				delete(rl.buckets, k)
			}
		}
		rl.cleanup = now.Add(rl.window)
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucketState{tokens: float64(rl.limit), lastRefill: now}
		rl.buckets[key] = b
	}
	if now.After(b.lastRefill) {
		elapsed := now.Sub(b.lastRefill).Seconds()
		b.tokens = math.Min(float64(rl.limit), b.tokens+elapsed*rl.refill)
		b.lastRefill = now
	}

	if b.tokens < 1 {
		need := 1 - b.tokens
		retryAfter = time.Duration(math.Ceil((need / rl.refill) * float64(time.Second)))
		return false, 0, retryAfter
	}
	b.tokens--
	return true, int(math.Floor(b.tokens)), 0
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("%d", seconds)
}
