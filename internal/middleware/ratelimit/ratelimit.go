// Package ratelimit is a per-client fixed-window rate limiter for mutating
// requests.
package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultLimit  = 60
	window        = time.Minute
	staleAfter    = 10 * time.Minute
	cleanupPeriod = 5 * time.Minute
)

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

// Limiter tracks request counts per client key (usually an IP address).
type Limiter struct {
	mu           sync.Mutex
	limit        int
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// New creates a limiter allowing limit requests per minute per client.
// A non-positive limit falls back to the default of 60.
func New(limit int) *Limiter {
	if limit <= 0 {
		limit = defaultLimit
	}
	l := &Limiter{
		limit:       limit,
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may proceed and records the attempt.
func (l *Limiter) Allow(clientKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	client, ok := l.clients[clientKey]
	if !ok {
		l.clients[clientKey] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > window {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= l.limit
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeStale()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) removeStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for key, client := range l.clients {
		if client.lastRequest.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stop shuts down the background cleanup goroutine.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}
