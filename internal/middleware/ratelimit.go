// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// window is one client's fixed counting window.
type window struct {
	start time.Time
	hits  int
}

// RateLimiter counts unsafe requests per client IP in fixed windows.
// GET and HEAD pass untouched, so a throttled visitor can still load the
// login form and read the error on it.
type RateLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time

	// OnLimit renders the rejection. Nil means a plain 429.
	OnLimit http.Handler
}

// NewRateLimiter allows limit unsafe requests per client in each period.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// allow records a hit for key and reports whether it fits the budget.
func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.period {
		rl.sweep(now)
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		w = &window{start: now}
		rl.windows[key] = w
	}
	if w.hits >= rl.limit {
		return false
	}
	w.hits++
	return true
}

// sweep drops windows that have run out. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.period {
			delete(rl.windows, key)
		}
	}
	rl.lastSweep = now
}

// retryAfter is the number of whole seconds until key's window resets.
func (rl *RateLimiter) retryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[key]
	if !ok {
		return 0
	}
	left := rl.period - rl.now().Sub(w.start)
	secs := int((left + time.Second - 1) / time.Second)
	return max(secs, 1)
}

// Middleware rejects POSTs from clients that spent their budget.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if rl.allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter(ip)))
		if rl.OnLimit != nil {
			rl.OnLimit.ServeHTTP(w, r)
			return
		}
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
	})
}

// clientIP is the connection's address without its port. Forwarding
// headers are client-controlled, so they only count once chi's RealIP
// middleware, enabled for a trusted proxy, has copied them into
// RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
