package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyExists marks an idempotent create that found the resource
// already in place. Callers treat it as success.
var ErrAlreadyExists = errors.New("resource already exists")

// ErrTransient marks a remote failure expected to clear on its own, such as
// throttling or propagation delay in an eventually-consistent control plane.
// Providers wrap known propagation errors with it.
var ErrTransient = errors.New("transient remote failure")

// ErrAwaitTimeout is returned by Poller.Await when the deadline elapses
// before the resource reaches a terminal state.
var ErrAwaitTimeout = errors.New("timed out awaiting resource readiness")

// TerminalError reports a resource that ended provisioning in StateFailed.
// It is never retried automatically; the caller decides next steps.
type TerminalError struct {
	Resource string
	State    ProvisioningState
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("resource %s reached terminal state %s", e.Resource, e.State)
}

// IsTransient checks if an error is likely transient and retryable. Beyond
// the explicit ErrTransient marker it matches common cloud API throttling
// and network error messages.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrAlreadyExists) {
		return false
	}
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"throttl",
		"rate exceed",
		"too many requests",
		"request limit",
		"slow down",
		"service unavailable",
		"internal server error",
		"connection reset",
		"connection refused",
		"timeout",
		"i/o timeout",
		"temporary failure",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
