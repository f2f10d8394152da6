package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelstack-io/reelstack/internal/logging"
)

// Provisioner drives the provisioning pipeline for a single resource:
// idempotent create, readiness wait, then retried sub-resource creation.
// Execution is strictly sequential; independent resources are provisioned
// one after another by the caller.
type Provisioner struct {
	cp     ControlPlane
	poller *Poller
	policy *RetryPolicy
}

// New builds a Provisioner. A nil poller or policy falls back to defaults.
func New(cp ControlPlane, poller *Poller, policy *RetryPolicy) *Provisioner {
	if poller == nil {
		poller = &Poller{Interval: DefaultPollInterval, Timeout: DefaultAwaitTimeout}
	}
	if policy == nil {
		policy = DefaultRetryPolicy()
	}
	return &Provisioner{cp: cp, poller: poller, policy: policy}
}

// Provision creates res, blocks until it reports Succeeded, then applies its
// sub-resources in order with retries around each. No sub-resource operation
// is attempted before the parent is ready. A resource that already exists is
// treated as created.
func (p *Provisioner) Provision(ctx context.Context, res ResourceDescriptor, subs ...SubResource) error {
	if err := p.cp.CreateResource(ctx, res); err != nil {
		if !errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("create %s: %w", res.Address(), err)
		}
		logging.Info("resource already exists", "resource", res.Address())
	} else {
		logging.Info("resource create requested", "resource", res.Address())
	}

	state, err := p.poller.Await(ctx, func(ctx context.Context) (ProvisioningState, error) {
		return p.cp.ResourceState(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("await %s: %w", res.Address(), err)
	}
	if state == StateFailed {
		return &TerminalError{Resource: res.Address(), State: state}
	}
	logging.Info("resource ready", "resource", res.Address())

	for _, sub := range subs {
		err := Retry(ctx, p.policy, func(ctx context.Context) error {
			return p.cp.CreateSubResource(ctx, res, sub)
		}, IsTransient)
		if err != nil {
			return fmt.Errorf("create %s/%s: %w", res.Address(), sub.Name, err)
		}
		logging.Debug("sub-resource created", "resource", res.Address(), "sub", sub.Name)
	}
	return nil
}

// Destroy deletes res, retrying transient control-plane failures.
func (p *Provisioner) Destroy(ctx context.Context, res ResourceDescriptor) error {
	err := Retry(ctx, p.policy, func(ctx context.Context) error {
		return p.cp.DeleteResource(ctx, res)
	}, IsTransient)
	if err != nil {
		return fmt.Errorf("delete %s: %w", res.Address(), err)
	}
	logging.Info("resource deleted", "resource", res.Address())
	return nil
}
