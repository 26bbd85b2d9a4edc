// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"
)

// cleanupInterval is how often idle clients are forgotten.
const cleanupInterval = 5 * time.Minute

// hits holds one client's request times inside the current window.
type hits struct {
	mu    sync.Mutex
	times []time.Time
}

// RateLimiter is a per-IP sliding window limiter. The staff login, 2FA
// verification and public intake submissions each get their own.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*hits
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter allows limit requests per window per client IP. Call
// Stop to end its cleanup goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*hits),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) client(key string) *hits {
	rl.mu.RLock()
	h, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return h
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if h, ok = rl.clients[key]; !ok {
		h = &hits{}
		rl.clients[key] = h
	}
	return h
}

// allow records a request for key. When the key is over its limit it
// returns false and how long until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	h := rl.client(key)
	now := rl.now()
	cutoff := now.Add(-rl.window)

	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.times[:0]
	for _, ts := range h.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	h.times = kept

	if len(h.times) >= rl.limit {
		return false, h.times[0].Add(rl.window).Sub(now)
	}
	h.times = append(h.times, now)
	return true, 0
}

// cleanup forgets clients with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, h := range rl.clients {
		h.mu.Lock()
		idle := len(h.times) == 0 || !h.times[len(h.times)-1].After(cutoff)
		h.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware answers 429 with Retry-After once a client IP is over the
// limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		ok, wait := rl.allow(ip)
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			slog.Warn("rate limited", "remote", ip, "path", r.URL.Path, "retry_after", secs)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the visitor address in canonical form. The router runs
// chi's RealIP first, so RemoteAddr already holds the proxy-reported
// address when that parsed as an IP. Anything else yields "" so the value
// always fits the submission's ip_address column.
func ClientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return ""
	}
	return addr.WithZone("").Unmap().String()
}
