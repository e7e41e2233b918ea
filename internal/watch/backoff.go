package watch

import (
	"math/rand"
	"time"
)

// backoff spaces out failed re-apply attempts, doubling from base up to max
// with 20% jitter either way.
type backoff struct {
	base time.Duration
	max  time.Duration
	cur  time.Duration
}

func newBackoff(base, max time.Duration) *backoff {
	return &backoff{base: base, max: max}
}

// Next advances the sequence and returns the jittered wait before the next
// attempt.
func (b *backoff) Next() time.Duration {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
		if b.cur > b.max {
			b.cur = b.max
		}
	}
	j := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(b.cur) * j)
}

func (b *backoff) Reset() { b.cur = 0 }
