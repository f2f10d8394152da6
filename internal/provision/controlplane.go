package provision

import "context"

// ControlPlane is the provider management API surface the provisioner
// drives. Create calls must be idempotent: creating a resource that already
// exists returns an error wrapping ErrAlreadyExists rather than a duplicate.
type ControlPlane interface {
	// CreateResource issues the create request for res. It does not wait for
	// the resource to become ready.
	CreateResource(ctx context.Context, res ResourceDescriptor) error

	// ResourceState reads the current provisioning state of res. Read-only.
	ResourceState(ctx context.Context, res ResourceDescriptor) (ProvisioningState, error)

	// CreateSubResource applies a dependent operation on a parent that has
	// already reached StateSucceeded.
	CreateSubResource(ctx context.Context, parent ResourceDescriptor, sub SubResource) error

	// DeleteResource removes res. Deleting a resource that does not exist is
	// not an error.
	DeleteResource(ctx context.Context, res ResourceDescriptor) error
}
