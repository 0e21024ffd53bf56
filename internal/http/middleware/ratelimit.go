package middleware

import (
	"net/http"
	"sync"
	"time"
)

// loginThrottle tracks token buckets per client IP. It guards the login
// endpoint against credential stuffing; the rest of the API is behind
// auth and does not need it.
type loginThrottle struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64

	lastPrune time.Time
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

const (
	pruneEvery = 5 * time.Minute
	staleAfter = 10 * time.Minute
)

func newLoginThrottle(rate float64, burst int) *loginThrottle {
	if burst < 1 {
		burst = 1
	}
	return &loginThrottle{
		buckets:   make(map[string]*tokenBucket),
		rate:      rate,
		burst:     float64(burst),
		lastPrune: time.Now(),
	}
}

func (t *loginThrottle) allow(ip string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastPrune) >= pruneEvery {
		t.prune(now)
	}

	b, ok := t.buckets[ip]
	if !ok {
		b = &tokenBucket{tokens: t.burst, seen: now}
		t.buckets[ip] = b
	}

	b.tokens += now.Sub(b.seen).Seconds() * t.rate
	if b.tokens > t.burst {
		b.tokens = t.burst
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets idle long enough to have refilled anyway. Caller
// holds the mutex.
func (t *loginThrottle) prune(now time.Time) {
	cutoff := now.Add(-staleAfter)
	for ip, b := range t.buckets {
		if b.seen.Before(cutoff) {
			delete(t.buckets, ip)
		}
	}
	t.lastPrune = now
}

// RateLimit rejects requests beyond rate req/sec (with the given burst)
// per client IP with 429. Relies on chi's RealIP having normalized
// RemoteAddr upstream; falls back to the X-Real-Ip header when set.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	throttle := newLoginThrottle(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !throttle.allow(ip, time.Now()) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
