package auth

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_FirstRequestAdmits(t *testing.T) {
	limiter := NewLoginLimiter(DefaultLoginMaxAttempts, DefaultLoginWindow)
	assert.True(t, limiter.Admit("203.0.113.50"))
}

func TestLoginLimiter_MaxAttemptsWithinWindow(t *testing.T) {
	limiter := NewLoginLimiter(10, 15*time.Minute)

	for i := 1; i <= 10; i++ {
		assert.True(t, limiter.Admit("203.0.113.50"), "attempt %d should be admitted", i)
	}

	// 11th attempt within the same window is denied
	assert.False(t, limiter.Admit("203.0.113.50"))
	assert.False(t, limiter.Admit("203.0.113.50"))

	// other keys are unaffected
	assert.True(t, limiter.Admit("198.51.100.7"))
}

func TestLoginLimiter_WindowReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLoginLimiter(10, 15*time.Minute)
	limiter.TimeFunc = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Admit("203.0.113.50"))
	}
	assert.False(t, limiter.Admit("203.0.113.50"))

	// still within the window
	now = now.Add(14 * time.Minute)
	assert.False(t, limiter.Admit("203.0.113.50"))

	// window elapsed: counter resets entirely, prior exhaustion is forgotten
	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Admit("203.0.113.50"))

	// and the fresh window counts from 1 again
	for i := 0; i < 9; i++ {
		assert.True(t, limiter.Admit("203.0.113.50"))
	}
	assert.False(t, limiter.Admit("203.0.113.50"))
}

func TestLoginLimiter_ConcurrentAdmits(t *testing.T) {
	maxAttempts := 10
	limiter := NewLoginLimiter(maxAttempts, 15*time.Minute)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("203.0.113.50") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	// no lost updates: exactly maxAttempts admits, never more
	assert.Equal(t, int32(maxAttempts), admitted.Load())
}

func TestLoginLimiter_IndependentKeys(t *testing.T) {
	limiter := NewLoginLimiter(2, 15*time.Minute)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		assert.True(t, limiter.Admit(key))
		assert.True(t, limiter.Admit(key))
		assert.False(t, limiter.Admit(key))
	}
}
