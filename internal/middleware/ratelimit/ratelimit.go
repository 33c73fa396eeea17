// Package ratelimit provides a small sliding-window per-client limiter
// for the write endpoints.
package ratelimit

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type clientInfo struct {
	requests []time.Time
	lastSeen time.Time
}

// Limiter tracks request timestamps per client IP inside a sliding
// window.
type Limiter struct {
	mu          sync.Mutex
	clients     map[string]*clientInfo
	maxRequests int
	window      time.Duration
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New builds a limiter allowing maxRequests per window per client and
// starts its janitor goroutine. Call Close when done.
func New(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		clients:     make(map[string]*clientInfo),
		maxRequests: maxRequests,
		window:      window,
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may proceed, recording the request
// when it does.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	info, ok := l.clients[clientID]
	if !ok {
		info = &clientInfo{}
		l.clients[clientID] = info
	}
	info.lastSeen = now

	cutoff := now.Add(-l.window)
	kept := info.requests[:0]
	for _, ts := range info.requests {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	info.requests = kept

	if len(info.requests) >= l.maxRequests {
		return false
	}
	info.requests = append(info.requests, now)
	return true
}

// Middleware rejects over-limit clients with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get("X-Forwarded-For")
		if clientID == "" {
			clientID = r.RemoteAddr
		}
		if !l.Allow(clientID) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientID,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCleanup:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for id, info := range l.clients {
				if now.Sub(info.lastSeen) > 2*l.window {
					delete(l.clients, id)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the janitor goroutine.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.stopCleanup) })
}
