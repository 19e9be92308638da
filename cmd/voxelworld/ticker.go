package main

import "time"

// TickLimiter paces the simulation at a fixed tick rate.
type TickLimiter struct {
	target time.Duration
	next   time.Time
}

func NewTickLimiter(rate int) *TickLimiter {
	return &TickLimiter{target: time.Second / time.Duration(max(rate, 1))}
}

// Wait blocks until the next tick is due. It uses a hybrid sleep/spin
// approach for better precision at high rates.
func (l *TickLimiter) Wait() {
	if l.next.IsZero() {
		l.next = time.Now().Add(l.target)
	} else {
		l.next = l.next.Add(l.target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// Resync after a hitch so we don't try to catch up.
	if late := -time.Until(l.next); late > l.target {
		l.next = time.Now().Add(l.target)
	}
}
