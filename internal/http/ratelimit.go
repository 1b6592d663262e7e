package http

import (
	"sync"
	"time"
)

// Every ledger mutation (add, delete, clear) from one client draws on the
// same budget.
const (
	mutationLimit  = 60
	mutationWindow = time.Minute
)

// rateLimiter counts mutations per client IP in fixed windows.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients map[string]*clientWindow
	hits    map[string]int64 // rejected mutations by route

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientWindow struct {
	start    time.Time
	requests int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:       limit,
		window:      window,
		now:         time.Now,
		clients:     make(map[string]*clientWindow),
		hits:        make(map[string]int64),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients whose window closed a while ago.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for ip, c := range rl.clients {
		if c.start.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// ActiveClients returns the number of client IPs currently tracked.
func (rl *rateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Hits returns a copy of the rejected mutation counts keyed by route.
func (rl *rateLimiter) Hits() map[string]int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make(map[string]int64, len(rl.hits))
	for route, n := range rl.hits {
		out[route] = n
	}
	return out
}

// allow records one mutation of route by clientIP. When the client already
// used its budget it returns false and how long until its window reopens.
func (rl *rateLimiter) allow(clientIP, route string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[clientIP] = &clientWindow{start: now, requests: 1}
		return true, 0
	}

	if c.requests >= rl.limit {
		rl.hits[route]++
		return false, c.start.Add(rl.window).Sub(now)
	}
	c.requests++
	return true, 0
}
