package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSleep replaces the backoff sleep with a recorder so tests observe the
// delay schedule without waiting.
func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		slept = append(slept, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return &slept
}

func TestRetry_SuccessAfterFailures(t *testing.T) {
	slept := stubSleep(t)

	attempts := 0
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   2,
	}, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("throttled")
		}
		return nil
	}, IsTransient)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// Two failures: delays d and d*m.
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *slept)
}

func TestRetry_BackoffSchedule(t *testing.T) {
	slept := stubSleep(t)

	attempts := 0
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 30 * time.Second,
		Multiplier:   2,
	}, func(ctx context.Context) error {
		attempts++
		if attempts < 4 {
			return fmt.Errorf("service unavailable")
		}
		return nil
	}, IsTransient)

	require.NoError(t, err)
	assert.Equal(t, 4, attempts)

	var total time.Duration
	for _, d := range *slept {
		total += d
	}
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}, *slept)
	assert.Equal(t, 210*time.Second, total)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	stubSleep(t)

	errs := []error{
		errors.New("fail 1"),
		errors.New("fail 2"),
		errors.New("fail 3"),
	}
	attempts := 0
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Multiplier:   2,
	}, func(ctx context.Context) error {
		attempts++
		return errs[attempts-1]
	}, func(error) bool { return true })

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max attempts (3)")
	// The propagated error is the one from the final attempt.
	assert.ErrorIs(t, err, errs[2])
	assert.NotErrorIs(t, err, errs[0])
}

func TestRetry_NonRetryable(t *testing.T) {
	stubSleep(t)

	attempts := 0
	wantErr := errors.New("access denied")
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Multiplier:   2,
	}, func(ctx context.Context) error {
		attempts++
		return wantErr
	}, IsTransient)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, attempts)
}

func TestRetry_DelayCap(t *testing.T) {
	slept := stubSleep(t)

	attempts := 0
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   10,
		MaxDelay:     25 * time.Millisecond,
	}, func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("timeout")
	}, IsTransient)

	require.Error(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}, *slept)
}

func TestRetry_JitterBounded(t *testing.T) {
	slept := stubSleep(t)

	attempts := 0
	_ = Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2,
		Jitter:       true,
	}, func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("throttled")
	}, IsTransient)

	require.Len(t, *slept, 4)
	// Full jitter draws each delay from [0, nominal).
	nominal := []time.Duration{100, 200, 400, 800}
	for i, d := range *slept {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, nominal[i]*time.Millisecond)
	}
}

func TestRetry_NotifyRecords(t *testing.T) {
	stubSleep(t)

	var records []AttemptRecord
	attempts := 0
	err := Retry(context.Background(), &RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Multiplier:   2,
		Notify:       func(rec AttemptRecord) { records = append(records, rec) },
	}, func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return fmt.Errorf("throttled")
		}
		return nil
	}, IsTransient)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Attempt)
	assert.Error(t, records[0].Err)
	assert.Equal(t, time.Millisecond, records[0].Delay)
	assert.Equal(t, 2, records[1].Attempt)
	assert.NoError(t, records[1].Err)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, &RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2,
	}, func(ctx context.Context) error {
		return fmt.Errorf("would retry")
	}, func(error) bool { return true })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestRetry_NilPolicyUsesDefaults(t *testing.T) {
	stubSleep(t)

	attempts := 0
	err := Retry(context.Background(), nil, func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("timeout")
	}, IsTransient)

	require.Error(t, err)
	assert.Equal(t, DefaultRetryAttempts, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{fmt.Errorf("throttling"), true},
		{fmt.Errorf("Rate exceeded"), true},
		{fmt.Errorf("Too Many Requests"), true},
		{fmt.Errorf("Service Unavailable"), true},
		{fmt.Errorf("connection reset by peer"), true},
		{fmt.Errorf("i/o timeout"), true},
		{fmt.Errorf("Please Slow Down"), true},
		{fmt.Errorf("bucket not yet visible: %w", ErrTransient), true},
		{fmt.Errorf("bucket b: %w", ErrAlreadyExists), false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{fmt.Errorf("resource not found"), false},
		{fmt.Errorf("access denied"), false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}
