package provision

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval is the default fixed delay between state queries.
const DefaultPollInterval = 5 * time.Second

// DefaultAwaitTimeout is the default overall readiness deadline.
const DefaultAwaitTimeout = 10 * time.Minute

// StateFunc queries the current provisioning state of one resource.
type StateFunc func(ctx context.Context) (ProvisioningState, error)

// Poller blocks until a resource reaches a terminal provisioning state. The
// interval is fixed; unlike retry backoff there is nothing to be gained from
// growing it while a create is still settling.
type Poller struct {
	Interval time.Duration // delay between queries
	Timeout  time.Duration // overall deadline, 0 waits indefinitely
}

// Await polls fn until the resource reports Succeeded or Failed. A Failed
// state is returned without error so the caller decides whether it is fatal.
// If the first query already reports a terminal state, Await returns without
// sleeping. When Timeout elapses first, Await returns ErrAwaitTimeout.
func (p *Poller) Await(ctx context.Context, fn StateFunc) (ProvisioningState, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	for {
		state, err := fn(ctx)
		if err != nil {
			if p.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
				return state, ErrAwaitTimeout
			}
			return state, fmt.Errorf("query resource state: %w", err)
		}
		if state.Terminal() {
			return state, nil
		}

		if err := sleep(ctx, interval); err != nil {
			if p.Timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
				return state, ErrAwaitTimeout
			}
			return state, fmt.Errorf("await cancelled: %w", err)
		}
	}
}
