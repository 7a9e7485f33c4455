package httputil

import "sync"

// ConcurrencyLimiter caps concurrent long-running requests per client key
// and globally.
type ConcurrencyLimiter struct {
	mu       sync.Mutex
	active   map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewConcurrencyLimiter returns a limiter admitting maxPerIP requests per key
// and maxTotal overall. Limits below one are raised to one.
func NewConcurrencyLimiter(maxPerIP, maxTotal int) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		active:   make(map[string]int),
		maxPerIP: max(maxPerIP, 1),
		maxTotal: max(maxTotal, 1),
	}
}

// Acquire registers a request for ip. It returns false if the client or
// global limit has been reached; a successful Acquire must be paired with
// Release.
func (l *ConcurrencyLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal || l.active[ip] >= l.maxPerIP {
		return false
	}
	l.active[ip]++
	l.total++
	return true
}

// Release decrements the count for ip.
func (l *ConcurrencyLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active[ip]--
	l.total--
	if l.active[ip] <= 0 {
		delete(l.active, ip)
	}
}

// Count returns the number of active requests for ip.
func (l *ConcurrencyLimiter) Count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[ip]
}
