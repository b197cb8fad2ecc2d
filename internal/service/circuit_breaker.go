package service

import (
	"fmt"
	"sync"
	"time"
)

// circuitBreaker stops calls to a provider after max consecutive failures.
// Once coolDown has passed a single trial call is let through; its outcome
// closes or reopens the breaker.
type circuitBreaker struct {
	mu       sync.Mutex
	max      int
	coolDown time.Duration
	now      func() time.Time

	failures int
	openedAt time.Time
	trial    bool
}

func newCircuitBreaker(maxFailures int, coolDown time.Duration) *circuitBreaker {
	return &circuitBreaker{max: maxFailures, coolDown: coolDown, now: time.Now}
}

// allow reports whether a call may proceed.
func (b *circuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.max {
		return nil
	}
	if b.trial {
		return fmt.Errorf("circuit breaker open: trial call in flight")
	}
	if wait := b.coolDown - b.now().Sub(b.openedAt); wait > 0 {
		return fmt.Errorf("circuit breaker open: too many consecutive errors (%d), retry in %s", b.failures, wait.Round(time.Second))
	}
	b.trial = true
	return nil
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trial = false
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.trial = false
	if b.failures >= b.max {
		b.openedAt = b.now()
	}
}

func (b *circuitBreaker) reset() {
	b.success()
}

func (b *circuitBreaker) status() (failures int, open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures, b.failures >= b.max
}
