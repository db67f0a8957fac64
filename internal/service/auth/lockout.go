package auth

import (
	"sync"
	"time"
)

type attempts struct {
	count        int
	blockedUntil time.Time
}

// Lockout blocks a client key after too many consecutive failed logins.
// A block that has run out clears the counter on the next attempt.
type Lockout struct {
	mu      sync.Mutex
	max     int
	block   time.Duration
	entries map[string]*attempts
	now     func() time.Time
}

// NewLockout blocks a key for block after max consecutive failures.
func NewLockout(max int, block time.Duration) *Lockout {
	return &Lockout{
		max:     max,
		block:   block,
		entries: make(map[string]*attempts),
		now:     time.Now,
	}
}

// Blocked reports whether key is currently locked out.
func (l *Lockout) Blocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || entry.count < l.max {
		return false
	}
	if l.now().Before(entry.blockedUntil) {
		return true
	}
	delete(l.entries, key)
	return false
}

// Fail records a failed attempt and starts the block once the limit is hit.
func (l *Lockout) Fail(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &attempts{}
		l.entries[key] = entry
	}
	entry.count++
	if entry.count >= l.max {
		entry.blockedUntil = l.now().Add(l.block)
	}
}

// Reset forgets key after a successful login.
func (l *Lockout) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}
