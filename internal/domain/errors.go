package domain

import (
	"errors"
	"fmt"
)

// AuthError means the caller is not authenticated: no stored credential, or
// the provider rejected the one refresh attempt. Never retried automatically.
type AuthError struct {
	AthleteID int64
	Reason    string
	Err       error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not authenticated (athlete %d): %s: %v", e.AthleteID, e.Reason, e.Err)
	}
	return fmt.Sprintf("not authenticated (athlete %d): %s", e.AthleteID, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError covers network failures and non-2xx provider responses.
// Single-account operations surface it; aggregation scopes catch it per unit.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
