// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across session/api/controller layers.
var (
	// ErrNotFound indicates the requested entity (or slot value) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuthRequired indicates a missing or rejected session token.
	ErrAuthRequired = errors.New("auth required")

	// ErrForbidden indicates the viewer is not the owner of the resource.
	ErrForbidden = errors.New("authorization denied")

	// ErrRemote indicates a non-success response from the API.
	ErrRemote = errors.New("remote rejection")

	// ErrNetwork indicates a transport-level failure before any response arrived.
	ErrNetwork = errors.New("network failure")

	// ErrValidation indicates input rejected locally before any request was sent.
	ErrValidation = errors.New("validation")

	// ErrInFlight indicates the same action is already running and the trigger was ignored.
	ErrInFlight = errors.New("action in flight")
)
