package provision

import "fmt"

// ResourceKind identifies the class of cloud resource being provisioned.
type ResourceKind string

const (
	KindStorage  ResourceKind = "storage"
	KindDatabase ResourceKind = "database"
	KindCDN      ResourceKind = "cdn"
)

// ResourceDescriptor identifies a single managed resource. Descriptors are
// built once at invocation start and never mutated afterwards.
type ResourceDescriptor struct {
	Name   string
	Kind   ResourceKind
	Region string
}

// Address returns the kind-qualified name used in logs and errors.
func (r ResourceDescriptor) Address() string {
	return fmt.Sprintf("%s.%s", r.Kind, r.Name)
}

// ProvisioningState is the asynchronous lifecycle status the control plane
// reports for a resource. The provider mutates it; this tool only reads it.
type ProvisioningState int

const (
	StatePending ProvisioningState = iota
	StateInProgress
	StateSucceeded
	StateFailed
)

func (s ProvisioningState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in-progress"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the state ends a readiness wait.
func (s ProvisioningState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// SubResource describes a dependent operation against an already-provisioned
// parent, e.g. a bucket website configuration or access policy. Sub-resource
// creation may transiently fail until the parent has propagated across the
// provider's infrastructure, so it is always driven through Retry.
type SubResource struct {
	Name       string
	Kind       string
	Properties map[string]any
}
