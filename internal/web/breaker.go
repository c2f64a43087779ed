package web

import "time"

// BreakerState is the position of one origin's circuit.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// breaker trips after threshold consecutive failures and stays open for
// cooldown. After that one trial request decides whether it closes again.
// Callers hold the fetcher lock.
type breaker struct {
	threshold int
	cooldown  time.Duration

	state    BreakerState
	failures int
	openedAt time.Time
	trial    bool
}

func (b *breaker) current(now time.Time) BreakerState {
	if b.state == BreakerOpen && now.Sub(b.openedAt) >= b.cooldown {
		b.state = BreakerHalfOpen
		b.trial = false
	}
	return b.state
}

// allow reports whether a request may go out now.
func (b *breaker) allow(now time.Time) bool {
	switch b.current(now) {
	case BreakerOpen:
		return false
	case BreakerHalfOpen:
		if b.trial {
			return false
		}
		b.trial = true
	}
	return true
}

func (b *breaker) record(now time.Time, ok bool) {
	if ok {
		b.state = BreakerClosed
		b.failures = 0
		b.trial = false
		return
	}
	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
		b.openedAt = now
		b.trial = false
	}
}
