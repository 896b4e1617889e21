package api

import "fmt"

// ValidationError reports input rejected locally, before any network call
// (unsupported file type, blank question).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// AuthError reports a credential rejected by the server: a failed login or
// signup, or a protected request made with a missing/expired token.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication failed: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("authentication failed: status %d", e.Status)
}

// NotFoundError reports an unknown document or conversation id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NetworkError wraps a failed or timed-out request, or an unexpected
// server-side status.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
