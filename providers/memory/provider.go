package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/reelstack-io/reelstack/internal/dataset"
	"github.com/reelstack-io/reelstack/internal/provision"
)

// Provider is an in-memory control plane and data plane used by tests. State
// sequences and sub-resource failures can be scripted per resource to
// exercise the poller and retry coordinator without a cloud account.
type Provider struct {
	mu        sync.Mutex
	resources map[string]*resource
	scripts   map[string][]provision.ProvisioningState
	subErrs   map[string][]error
	outputs   map[string]string
	movies    []dataset.Movie
	objects   map[string]Object
}

// Object is one stored blob.
type Object struct {
	ContentType string
	Body        []byte
}

type resource struct {
	descriptor provision.ResourceDescriptor
	states     []provision.ProvisioningState
	reads      int
	ready      bool
	subs       []provision.SubResource
}

func New() *Provider {
	return &Provider{
		resources: make(map[string]*resource),
		scripts:   make(map[string][]provision.ProvisioningState),
		subErrs:   make(map[string][]error),
		outputs:   make(map[string]string),
		objects:   make(map[string]Object),
	}
}

// SetOutput seeds an endpoint value reported by Outputs.
func (p *Provider) SetOutput(key, val string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs[key] = val
}

// Outputs returns the seeded endpoint values.
func (p *Provider) Outputs() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.outputs))
	for k, v := range p.outputs {
		out[k] = v
	}
	return out
}

// ScriptStates sets the states successive ResourceState calls report for the
// resource address; the final state repeats. Without a script, a created
// resource reports Succeeded immediately.
func (p *Provider) ScriptStates(addr string, states ...provision.ProvisioningState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[addr] = states
}

// FailSubResource queues errors returned by CreateSubResource for the given
// parent address and sub-resource name before it succeeds.
func (p *Provider) FailSubResource(addr, sub string, errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subErrs[addr+"/"+sub] = append(p.subErrs[addr+"/"+sub], errs...)
}

func (p *Provider) CreateResource(_ context.Context, res provision.ResourceDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := res.Address()
	if _, exists := p.resources[addr]; exists {
		return fmt.Errorf("%s: %w", addr, provision.ErrAlreadyExists)
	}

	states := p.scripts[addr]
	if len(states) == 0 {
		states = []provision.ProvisioningState{provision.StateSucceeded}
	}
	p.resources[addr] = &resource{descriptor: res, states: states}
	return nil
}

func (p *Provider) ResourceState(_ context.Context, res provision.ResourceDescriptor) (provision.ProvisioningState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.resources[res.Address()]
	if !ok {
		return provision.StatePending, nil
	}

	idx := r.reads
	if idx >= len(r.states) {
		idx = len(r.states) - 1
	}
	r.reads++

	state := r.states[idx]
	if state == provision.StateSucceeded {
		r.ready = true
	}
	return state, nil
}

func (p *Provider) CreateSubResource(_ context.Context, parent provision.ResourceDescriptor, sub provision.SubResource) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := parent.Address()
	r, ok := p.resources[addr]
	if !ok {
		return fmt.Errorf("parent %s does not exist", addr)
	}
	if !r.ready {
		return fmt.Errorf("parent %s has not reported ready", addr)
	}

	key := addr + "/" + sub.Name
	if errs := p.subErrs[key]; len(errs) > 0 {
		err := errs[0]
		p.subErrs[key] = errs[1:]
		return err
	}

	r.subs = append(r.subs, sub)
	return nil
}

func (p *Provider) DeleteResource(_ context.Context, res provision.ResourceDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.resources, res.Address())
	return nil
}

// PutMovie records an imported movie.
func (p *Provider) PutMovie(_ context.Context, m dataset.Movie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.movies = append(p.movies, m)
	return nil
}

// PutObject records an uploaded blob.
func (p *Provider) PutObject(_ context.Context, key, contentType string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[key] = Object{ContentType: contentType, Body: body}
	return nil
}

// Exists reports whether the resource address is present.
func (p *Provider) Exists(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.resources[addr]
	return ok
}

// StateReads returns how many times the resource's state was queried.
func (p *Provider) StateReads(addr string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.resources[addr]; ok {
		return r.reads
	}
	return 0
}

// SubResources returns the sub-resources created under the address, in order.
func (p *Provider) SubResources(addr string) []provision.SubResource {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.resources[addr]; ok {
		return append([]provision.SubResource(nil), r.subs...)
	}
	return nil
}

// Movies returns every imported record, in order.
func (p *Provider) Movies() []dataset.Movie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dataset.Movie(nil), p.movies...)
}

// Objects returns the stored blobs keyed by object key.
func (p *Provider) Objects() map[string]Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]Object, len(p.objects))
	for k, v := range p.objects {
		out[k] = v
	}
	return out
}
