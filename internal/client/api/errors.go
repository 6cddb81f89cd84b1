// Package api provides the authenticated HTTP gateway to the storefront
// backend and the error taxonomy shared by all client operations.
package api

import (
	"errors"
	"fmt"
)

// ErrIdentityUnavailable wraps a client state storage failure. It is fatal
// to all cart operations and propagates to the caller unchanged.
var ErrIdentityUnavailable = errors.New("cart identity unavailable")

// ErrSessionExpired reports that the access token expired and could not be
// refreshed. Guard logic routes the user to sign-in; the app keeps running.
var ErrSessionExpired = errors.New("session expired")

// TransportError reports a network or HTTP failure on a backend request.
// The last successfully fetched state stays in place; retries are
// user-initiated.
type TransportError struct {
	// Op names the failed operation, e.g. "fetch cart".
	Op string
	// Status is the HTTP status code, 0 when the request never completed.
	Status int
	// Err is the underlying cause, nil for plain non-2xx responses.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage returns the retry-eligible text shown to the shopper.
func (e *TransportError) UserMessage() string {
	return fmt.Sprintf("Could not %s. Please check your connection and try again.", e.Op)
}

// ValidationError reports a local precondition violation. It is raised
// before any network call is made.
type ValidationError struct {
	// Reason is the user-facing explanation.
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
