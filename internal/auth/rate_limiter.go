package auth

import (
	"sync"
	"time"
)

const (
	DefaultLoginWindow      = 15 * time.Minute
	DefaultLoginMaxAttempts = 10
)

var _ Limiter = (*LoginLimiter)(nil)

type Limiter interface {
	Admit(key string) bool
}

type limiterEntry struct {
	count     int
	resetTime time.Time
}

// LoginLimiter bounds login attempts per client key with a window-reset
// counter: the whole window resets to a fresh count once it elapses, there
// is no continuous decay. State lives in process memory only - entries are
// never evicted and nothing is shared across instances.
type LoginLimiter struct {
	mutex       sync.Mutex
	entries     map[string]*limiterEntry
	maxAttempts int
	window      time.Duration
	// ability to inject the clock (for unit testing window resets)
	TimeFunc func() time.Time
}

func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		entries:     make(map[string]*limiterEntry),
		maxAttempts: maxAttempts,
		window:      window,
		TimeFunc:    time.Now,
	}
}

// Admit reports whether another attempt for key is allowed right now. The
// read-modify-write happens under the lock, so two concurrent attempts at
// the limit boundary can never both pass.
func (l *LoginLimiter) Admit(key string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.TimeFunc()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetTime) {
		l.entries[key] = &limiterEntry{
			count:     1,
			resetTime: now.Add(l.window),
		}
		return true
	}

	if entry.count >= l.maxAttempts {
		return false
	}

	entry.count++
	return true
}
