package auth

import (
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// init registers the auth middleware factory with the transport package
func init() {
	transport.RegisterAuthMiddlewareFactory(CreateAuthMiddleware)
}

// CreateAuthMiddleware creates authentication middleware from transport config
func CreateAuthMiddleware(config *transport.AuthenticationConfig) transport.Middleware {
	provider, err := NewProvider(config)
	if err != nil {
		return nil
	}
	return NewAuthMiddleware(provider)
}

// NewProvider builds a provider from transport config
func NewProvider(config *transport.AuthenticationConfig) (Provider, error) {
	if config == nil {
		return nil, NewAuthError(ErrInvalidCredentials, "authentication config required")
	}

	switch config.Type {
	case "basic":
		return NewBasicProvider(config.Username, config.Password)
	case "bearer":
		return NewBearerTokenProvider(&BearerTokenConfig{Token: config.Token})
	default:
		return nil, NewAuthError(ErrInvalidCredentials, "unsupported authentication type").
			WithDetail("type", config.Type)
	}
}
