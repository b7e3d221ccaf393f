// Package confirm resolves a submitted transaction id to its on-chain
// verdict by polling the application log with exponential backoff.
package confirm

import (
	"math"
	"time"
)

// Default polling cadence: 10s, 15s, 22.5s, ...
const (
	DefaultInitial    = 10 * time.Second
	DefaultMultiplier = 1.5
)

// Backoff controls polling cadence.
type Backoff interface {
	// Next returns the wait after the k-th unsuccessful attempt, k >= 0.
	Next(k int) time.Duration
}

// Exponential waits Initial * Multiplier^k. Max, when set, caps the delay.
type Exponential struct {
	Initial    time.Duration
	Multiplier float64
	Max        time.Duration
}

// DefaultBackoff returns the 10s * 1.5^k schedule.
func DefaultBackoff() Exponential {
	return Exponential{Initial: DefaultInitial, Multiplier: DefaultMultiplier}
}

// Next implements Backoff.
func (b Exponential) Next(k int) time.Duration {
	if k < 0 {
		k = 0
	}
	initial := b.Initial
	if initial <= 0 {
		initial = DefaultInitial
	}
	multiplier := b.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	// Cap before converting to avoid overflowing time.Duration.
	const ceiling = float64(math.MaxInt64) - 2048
	d := float64(initial) * math.Pow(multiplier, float64(k))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if d > ceiling || math.IsInf(d, 1) {
		d = ceiling
	}
	return time.Duration(d)
}

// Constant waits the same duration after every attempt.
type Constant time.Duration

// Next implements Backoff.
func (c Constant) Next(int) time.Duration { return time.Duration(c) }
