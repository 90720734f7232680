package helpers

import (
	"sync/atomic"
	"time"

	atomic_clock "github.com/temoto/atomic_clock"
)

// Backoff is a limited exponential delay for retry loops.
// First failure yields Min, each following failure multiplies by K up to
// Max. Any success resets. Safe for concurrent use.
type Backoff struct {
	next int64 // atomic
	last atomic_clock.Clock

	Min time.Duration
	Max time.Duration
	K   float32
}

// DelayAfter is meant for the tail of a retry loop:
//   for { err := op(); time.Sleep(b.DelayAfter(err == nil)) }
func (b *Backoff) DelayAfter(success bool) time.Duration {
	if success {
		b.Reset()
		return 0
	}
	return b.Failure()
}

// Failure bumps and returns the next delay.
func (b *Backoff) Failure() time.Duration {
	next := time.Duration(atomic.LoadInt64(&b.next))
	if next == 0 {
		next = b.Min
	} else {
		next = time.Duration(float32(next) * b.K)
	}
	if next < b.Min {
		next = b.Min
	}
	if next > b.Max {
		next = b.Max
	}
	atomic.StoreInt64(&b.next, int64(next))
	b.last.SetNow()
	return next
}

func (b *Backoff) Reset() {
	atomic.StoreInt64(&b.next, 0)
	b.last.SetNow()
}

// Idle reports time since the last Failure/Reset, zero if neither happened.
func (b *Backoff) Idle() time.Duration {
	if b.last.IsZero() {
		return 0
	}
	return atomic_clock.Since(&b.last)
}
