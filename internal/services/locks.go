package services

import (
	"sync"
	"time"
)

// ticketLocks serializes mutations per ticket ID so two concurrent status
// updates on the same ticket apply in some serial order, while mutations on
// different tickets proceed independently. Entries are evicted
// opportunistically after a TTL to bound memory, mirroring the visitor map
// of the HTTP rate limiter.
type ticketLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	ttl     time.Duration
	ops     uint64
}

type lockEntry struct {
	mu       sync.Mutex
	lastSeen time.Time
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{
		entries: make(map[string]*lockEntry),
		ttl:     10 * time.Minute,
	}
}

// acquire locks the per-ticket mutex and returns its unlock function.
func (l *ticketLocks) acquire(id string) func() {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &lockEntry{}
		l.entries[id] = e
	}
	e.lastSeen = time.Now()

	// Sweep occasionally; entries locked right now are simply skipped on
	// the next pass once their owner releases them.
	l.ops++
	if l.ops%512 == 0 {
		cutoff := time.Now().Add(-l.ttl)
		for k, v := range l.entries {
			if v != e && v.lastSeen.Before(cutoff) && v.mu.TryLock() {
				v.mu.Unlock()
				delete(l.entries, k)
			}
		}
	}
	l.mu.Unlock()

	e.mu.Lock()
	return e.mu.Unlock
}
