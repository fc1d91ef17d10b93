package rest

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitOpts defines the per-client rate limit, zero RPS disables it.
type RateLimitOpts struct {
	RPS   float64
	Burst int
	// IdleTTL is the time after which the limiter of a silent client is dropped.
	IdleTTL time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	opts RateLimitOpts

	mu      sync.Mutex
	clients map[string]*client
}

// newRateLimiter makes a limiter, cleaning up idle clients until ctx is done.
func newRateLimiter(ctx context.Context, opts RateLimitOpts) *rateLimiter {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 5 * time.Minute
	}

	l := &rateLimiter{opts: opts, clients: map[string]*client{}}
	if opts.RPS > 0 {
		go l.cleanup(ctx)
	}

	return l
}

// Middleware rejects requests of clients exceeding the limit.
func (l *rateLimiter) Middleware(next http.Handler) http.Handler {
	if l.opts.RPS <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, r, http.StatusTooManyRequests, errResponse(r, "too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *rateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.opts.RPS), l.opts.Burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func (l *rateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evict(now)
		}
	}
}

func (l *rateLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.opts.IdleTTL {
			delete(l.clients, ip)
		}
	}
}

// clientIP returns the host of the remote address of the request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
