// Package retry provides the exponential-backoff-with-jitter policy shared
// by the pipeline components that retry external calls: the transcription
// service (per-chunk retries) and the Question Generator (LLM retries).
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy controls retry attempts and backoff. A zero-value Policy makes a
// single attempt with no retry.
type Policy struct {
	MaxAttempts int
	Retryable   func(err error) bool

	MinBackoff time.Duration
	MaxBackoff time.Duration
	JitterFrac float64
}

func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		MinBackoff:  1 * time.Second,
		MaxBackoff:  30 * time.Second,
		JitterFrac:  0.5,
	}
}

// Do runs fn, retrying on retryable errors per the policy. It sleeps between
// attempts (respecting ctx cancellation) and returns the last error if every
// attempt fails.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt >= maxAttempts {
			break
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			break
		}
		delay := backoff(p, attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func backoff(p Policy, attempt int) time.Duration {
	minB := p.MinBackoff
	maxB := p.MaxBackoff
	jitter := p.JitterFrac
	if minB <= 0 {
		minB = 1 * time.Second
	}
	if maxB <= 0 {
		maxB = 30 * time.Second
	}
	if jitter <= 0 {
		jitter = 0.5
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempt-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * jitter
	low := float64(d) - delta
	high := float64(d) + delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*(high-low))
}
