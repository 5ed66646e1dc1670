package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"shareit/internal/config"
	"shareit/internal/models"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller.
type RateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func NewRateLimiter(cfg config.APIRateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// Wrap answers 429 once the caller exhausts its bucket. RPS <= 0 disables limiting.
func (l *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !l.getLimiter(clientKey(r)).Allow() {
			WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey prefers the caller id header and falls back to the remote host.
func clientKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.HeaderUserID)); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}
