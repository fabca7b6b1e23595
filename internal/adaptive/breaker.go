package adaptive

import (
	"sync"
	"time"
)

// BreakerState is the circuit breaker's current state.
type BreakerState string

// Circuit breaker states
const (
	// BreakerClosed: calls flow normally.
	BreakerClosed BreakerState = "closed"
	// BreakerOpen: calls are skipped until the cooldown elapses.
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen: one probe call is allowed; its outcome decides
	// whether the circuit closes again or re-opens.
	BreakerHalfOpen BreakerState = "half-open"
)

// Breaker is a circuit breaker guarding calls to the external reasoning
// service. After failureThreshold consecutive failures it opens for a
// cooldown window; the first call after the window becomes a probe.
//
// The clock is injected so state transitions are unit-testable without
// real waiting.
type Breaker struct {
	mu sync.Mutex

	state         BreakerState
	failures      int
	openedAt      time.Time
	probeInFlight bool

	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

// NewBreaker creates a closed circuit breaker. A nil clock uses time.Now.
func NewBreaker(failureThreshold int, cooldown time.Duration, now func() time.Time) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if now == nil {
		now = time.Now
	}

	return &Breaker{
		state:            BreakerClosed,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              now,
	}
}

// Allow reports whether a call may proceed. In the open state it flips to
// half-open once the cooldown has elapsed, admitting a single probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.state = BreakerHalfOpen
			b.probeInFlight = true
			return true
		}
		return false
	case BreakerHalfOpen:
		// Only one probe at a time.
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess reports a successful call, closing the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = BreakerClosed
	b.failures = 0
	b.probeInFlight = false
}

// RecordFailure reports a failed call. A failed probe re-opens the circuit
// immediately; in the closed state the circuit opens once the consecutive
// failure count reaches the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.open()
		return
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.open()
	}
}

// State returns the breaker's current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// open transitions to the open state. Caller must hold b.mu.
func (b *Breaker) open() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.failures = 0
	b.probeInFlight = false
}
