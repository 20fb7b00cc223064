package mockapi

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimit configures per-client throttling of the API routes.
type RateLimit struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

type bucket struct {
	tokens float64
	last   time.Time
}

// throttle is a token bucket per client key.
type throttle struct {
	rate  float64 // tokens per second
	burst float64
	ttl   time.Duration // idle time after which a bucket is full again
	now   func() time.Time

	mu    sync.Mutex
	m     map[string]*bucket
	swept time.Time
}

func newThrottle(rl RateLimit, now func() time.Time) *throttle {
	burst := rl.Burst
	if burst <= 0 {
		burst = 1
	}
	rate := float64(rl.PerMinute) / 60
	return &throttle{
		rate:  rate,
		burst: float64(burst),
		ttl:   time.Duration(float64(burst) / rate * float64(time.Second)),
		now:   now,
		m:     make(map[string]*bucket),
		swept: now(),
	}
}

func (t *throttle) allow(key string) bool {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.swept) >= t.ttl {
		t.sweep(now)
	}

	b := t.m[key]
	if b == nil {
		b = &bucket{tokens: t.burst, last: now}
		t.m[key] = b
	}
	b.tokens = min(t.burst, b.tokens+now.Sub(b.last).Seconds()*t.rate)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have been idle for a full refill.
func (t *throttle) sweep(now time.Time) {
	for k, b := range t.m {
		if now.Sub(b.last) >= t.ttl {
			delete(t.m, k)
		}
	}
	t.swept = now
}

// Throttle answers 429 once a client exceeds rl. Clients are keyed by token,
// or by remote IP when no token is sent. A zero PerMinute disables it.
func Throttle(rl RateLimit, now func() time.Time) func(http.Handler) http.Handler {
	if rl.PerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if now == nil {
		now = time.Now
	}
	t := newThrottle(rl, now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := readToken(r)
			if key == "" {
				key = remoteIP(r)
			}
			if !t.allow(key) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"detail": "Request was throttled.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
