package provision

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// DefaultRetryAttempts is the default total attempt budget for
// eventually-consistent control-plane operations.
const DefaultRetryAttempts = 5

// DefaultInitialDelay is the default backoff before the second attempt.
const DefaultInitialDelay = 2 * time.Second

// DefaultMaxDelay caps the backoff between attempts.
const DefaultMaxDelay = 60 * time.Second

// RetryPolicy defines the bounded exponential backoff applied around
// operations against an eventually-consistent control plane.
type RetryPolicy struct {
	MaxAttempts  int           // total attempts, minimum 1
	InitialDelay time.Duration // delay after the first failure
	Multiplier   float64       // growth factor per attempt
	MaxDelay     time.Duration // backoff cap, 0 means uncapped
	Jitter       bool          // randomize each delay to avoid retry storms

	// Notify, if set, observes every attempt outcome.
	Notify func(AttemptRecord)
}

// AttemptRecord reports the outcome of a single attempt. Records are
// ephemeral; they exist only for the Notify hook and logging.
type AttemptRecord struct {
	Attempt int
	Err     error         // nil on success
	Delay   time.Duration // backoff chosen before the next attempt, 0 on the last
}

// DefaultRetryPolicy returns a sensible default retry policy.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  DefaultRetryAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   2,
		MaxDelay:     DefaultMaxDelay,
		Jitter:       true,
	}
}

// sleep waits for d or until ctx is done. Stubbed in tests to observe
// backoff without waiting.
var sleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Retry executes fn until it succeeds, shouldRetry rejects the error, or the
// attempt budget is exhausted. The undisturbed delay before attempt k+1 is
// InitialDelay * Multiplier^(k-1), capped at MaxDelay; with Jitter enabled
// each delay is drawn uniformly from [0, delay). On exhaustion the error of
// the final attempt is propagated, wrapped.
func Retry(ctx context.Context, policy *RetryPolicy, fn func(ctx context.Context) error, shouldRetry func(error) bool) error {
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := policy.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			policy.notify(AttemptRecord{Attempt: attempt})
			return nil
		}

		if shouldRetry != nil && !shouldRetry(lastErr) {
			policy.notify(AttemptRecord{Attempt: attempt, Err: lastErr})
			return lastErr
		}

		if attempt == attempts {
			policy.notify(AttemptRecord{Attempt: attempt, Err: lastErr})
			break
		}

		d := delay
		if policy.MaxDelay > 0 && d > policy.MaxDelay {
			d = policy.MaxDelay
		}
		if policy.Jitter {
			d = time.Duration(rand.Float64() * float64(d))
		}
		policy.notify(AttemptRecord{Attempt: attempt, Err: lastErr, Delay: d})

		if err := sleep(ctx, d); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return fmt.Errorf("max attempts (%d) exhausted: %w", attempts, lastErr)
}

func (p *RetryPolicy) notify(rec AttemptRecord) {
	if p.Notify != nil {
		p.Notify(rec)
	}
}
