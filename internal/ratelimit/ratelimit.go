// Package ratelimit throttles admin actions per client with a fixed window.
package ratelimit

import (
	"sync"
	"time"
)

// idleTTL is how long a client's window is kept after its last request.
const idleTTL = 5 * time.Minute

type RateLimiter struct {
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
	mu      sync.Mutex
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type clientWindow struct {
	used    int
	started time.Time
}

// NewRateLimiter allows limitPerSecond requests per client and second.
func NewRateLimiter(limitPerSecond int) *RateLimiter {
	return newRateLimiter(limitPerSecond, time.Second, time.Minute)
}

func newRateLimiter(limit int, window, sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go rl.sweepLoop(sweepEvery)
	return rl
}

// Allow consumes one request from clientID's current window.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[clientID]
	if !ok || now.Sub(w.started) >= rl.window {
		w = &clientWindow{started: now}
		rl.clients[clientID] = w
	}

	if w.used >= rl.limit {
		return false
	}
	w.used++
	return true
}

// Remaining reports how many requests clientID may still make in its window.
func (rl *RateLimiter) Remaining(clientID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[clientID]
	if !ok || rl.now().Sub(w.started) >= rl.window {
		return rl.limit
	}
	return rl.limit - w.used
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets clients idle for longer than idleTTL.
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for id, w := range rl.clients {
		if now.Sub(w.started) > idleTTL {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}
