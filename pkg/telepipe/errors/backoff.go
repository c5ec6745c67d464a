package errors

import (
	"math/rand/v2"
	"time"
)

// Backoff computes capped exponential delays with jitter.
// Used by the spool flush worker to space out resend attempts.
type Backoff struct {
	// Initial is the delay after the first failure.
	Initial time.Duration

	// Max caps the delay growth.
	Max time.Duration

	// Factor is the multiplier applied per attempt.
	Factor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64
}

// DefaultBackoff is the standard spool backoff configuration.
var DefaultBackoff = Backoff{
	Initial: 30 * time.Second,
	Max:     30 * time.Minute,
	Factor:  2.0,
	Jitter:  0.1,
}

// Delay returns the delay before the given attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(b.Initial)
	for i := 1; i < attempt; i++ {
		d *= b.Factor
		if d >= float64(b.Max) {
			d = float64(b.Max)
			break
		}
	}

	if b.Jitter > 0 {
		d += d * b.Jitter * (rand.Float64()*2 - 1)
	}

	if d > float64(b.Max) {
		d = float64(b.Max)
	}
	return time.Duration(d)
}
