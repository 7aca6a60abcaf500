package errors

import (
	"errors"
	"fmt"
)

// Provider-side failures. Pools treat all of these as a reason to discard the
// provider, except ErrArchive during a download.
var (
	ErrUnauthorized       = errors.New("provider: unauthorized (invalid credentials or token)")
	ErrForbidden          = errors.New("provider: forbidden (insufficient permissions)")
	ErrNotFound           = errors.New("provider: resource not found")
	ErrRateLimited        = errors.New("provider: rate limit exceeded")
	ErrDownloadLimit      = errors.New("provider: download limit exceeded")
	ErrServiceUnavailable = errors.New("provider: service unavailable or internal server error")
	ErrNotLoggedIn        = errors.New("provider: not logged in")

	// ErrArchive marks a downloaded payload that could not be unpacked.
	ErrArchive = errors.New("subtitle: bad archive")
)

// Configuration and logic errors. These propagate to the caller.
var (
	ErrUnknownProvider = errors.New("config: unknown provider")
	ErrUnknownRefiner  = errors.New("config: unknown refiner")
	ErrInvalidConfig   = errors.New("config: invalid provider configuration")
	ErrUnsolvable      = errors.New("score: equation system has no unique non-negative integer solution")
	ErrUnsupportedKind = errors.New("video: unsupported video kind")
)

// ProviderError wraps a failure raised by a named provider operation.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Wrap returns err wrapped in a ProviderError, or nil when err is nil.
func Wrap(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// Is, As and Join re-export the standard helpers so callers importing this
// package under the name errors keep access to them.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
	New  = errors.New
)
