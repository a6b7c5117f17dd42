package domain

import "fmt"

// AuthError is fatal to the whole run: without a token nothing downstream
// can be trusted.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// DiscoveryError covers inventory listing failures. For account discovery it
// is fatal; for registry discovery it is scoped to one account.
type DiscoveryError struct {
	Scope string
	Err   error
}

func (e *DiscoveryError) Error() string { return fmt.Sprintf("discovery failed (%s): %v", e.Scope, e.Err) }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// ApplyError is scoped to a single onboard or delete action.
type ApplyError struct {
	Target string
	Err    error
}

func (e *ApplyError) Error() string { return fmt.Sprintf("apply failed for %s: %v", e.Target, e.Err) }
func (e *ApplyError) Unwrap() error { return e.Err }
