package provision

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStates returns a StateFunc that replays the sequence; the last
// state repeats.
func scriptedStates(queries *int, states ...ProvisioningState) StateFunc {
	return func(ctx context.Context) (ProvisioningState, error) {
		idx := *queries
		if idx >= len(states) {
			idx = len(states) - 1
		}
		*queries++
		return states[idx], nil
	}
}

func TestAwait_ImmediateSuccess(t *testing.T) {
	slept := stubSleep(t)

	queries := 0
	p := &Poller{Interval: 10 * time.Millisecond}
	state, err := p.Await(context.Background(), scriptedStates(&queries, StateSucceeded))

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, state)
	assert.Equal(t, 1, queries)
	// Zero sleeps when the first query already reports ready.
	assert.Empty(t, *slept)
}

func TestAwait_FailedStopsPolling(t *testing.T) {
	slept := stubSleep(t)

	queries := 0
	p := &Poller{Interval: 10 * time.Millisecond}
	state, err := p.Await(context.Background(), scriptedStates(&queries, StateFailed))

	// Failed is a terminal state, not an error: the caller decides.
	require.NoError(t, err)
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, 1, queries)
	assert.Empty(t, *slept)
}

func TestAwait_PendingThenSucceeded(t *testing.T) {
	slept := stubSleep(t)

	queries := 0
	p := &Poller{Interval: 7 * time.Millisecond}
	state, err := p.Await(context.Background(),
		scriptedStates(&queries, StatePending, StateInProgress, StateSucceeded))

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, state)
	assert.Equal(t, 3, queries)
	// Fixed interval, one sleep per non-terminal query.
	assert.Equal(t, []time.Duration{7 * time.Millisecond, 7 * time.Millisecond}, *slept)
}

func TestAwait_Timeout(t *testing.T) {
	queries := 0
	p := &Poller{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond}
	_, err := p.Await(context.Background(), scriptedStates(&queries, StateInProgress))

	assert.ErrorIs(t, err, ErrAwaitTimeout)
	assert.Greater(t, queries, 1)
}

func TestAwait_QueryError(t *testing.T) {
	p := &Poller{Interval: 5 * time.Millisecond}
	wantErr := fmt.Errorf("describe failed")
	_, err := p.Await(context.Background(), func(ctx context.Context) (ProvisioningState, error) {
		return StatePending, wantErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestAwait_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Poller{Interval: 50 * time.Millisecond}
	queries := 0
	_, err := p.Await(ctx, scriptedStates(&queries, StateInProgress))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "await cancelled")
}
