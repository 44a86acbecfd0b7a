package auth

import (
	"context"
	"encoding/base64"
	"net/http"
)

// BasicProvider sends HTTP basic credentials
type BasicProvider struct {
	username string
	password string
}

// NewBasicProvider creates a basic authentication provider
func NewBasicProvider(username, password string) (*BasicProvider, error) {
	if username == "" {
		return nil, NewAuthError(ErrInvalidCredentials, "username required")
	}
	return &BasicProvider{username: username, password: password}, nil
}

// Type returns "basic"
func (p *BasicProvider) Type() string {
	return "basic"
}

// Apply sets the Authorization header
func (p *BasicProvider) Apply(_ context.Context, h http.Header) error {
	creds := base64.StdEncoding.EncodeToString([]byte(p.username + ":" + p.password))
	h.Set("Authorization", "Basic "+creds)
	return nil
}
