// Package auth provides client-side credentials for Jolokia agents. Agents
// are usually secured with HTTP basic authentication or, behind a gateway,
// with bearer tokens. Providers attach credentials to outgoing requests and
// plug into the transport layer through middleware.
package auth

import (
	"context"
	"net/http"
)

// Provider attaches credentials to an outgoing request
type Provider interface {
	// Apply sets the credential headers on h
	Apply(ctx context.Context, h http.Header) error

	// Type returns the authentication type identifier ("basic", "bearer")
	Type() string
}

// Refresher is implemented by providers whose credentials can go stale.
// Invalidate drops any cached credential so the next Apply fetches a new one.
type Refresher interface {
	Invalidate()
}

// AuthError represents a failure to obtain credentials
type AuthError struct {
	// Code is the error code (e.g., "invalid_credentials", "token_unavailable")
	Code string

	// Message provides human-readable error details
	Message string

	// Details contains additional error context
	Details map[string]interface{}

	cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AuthError) Unwrap() error {
	return e.cause
}

// Common authentication error codes
const (
	ErrInvalidCredentials = "invalid_credentials"
	ErrTokenExpired       = "token_expired"
	ErrTokenUnavailable   = "token_unavailable"
)

// NewAuthError creates a new authentication error.
func NewAuthError(code, message string) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the authentication error.
func (e *AuthError) WithDetail(key string, value interface{}) *AuthError {
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *AuthError) WithCause(err error) *AuthError {
	e.cause = err
	return e
}
