package transport

import (
	"context"
	"sync"
)

// Middleware wraps a transport to add functionality such as retries or
// authentication.
type Middleware interface {
	// Wrap wraps the given transport with middleware functionality
	Wrap(transport Transport) Transport
}

// MiddlewareFunc is an adapter to allow the use of ordinary functions as middleware
type MiddlewareFunc func(Transport) Transport

// Wrap implements the Middleware interface
func (f MiddlewareFunc) Wrap(t Transport) Transport {
	return f(t)
}

// ChainMiddleware chains multiple middleware together
func ChainMiddleware(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(transport Transport) Transport {
		// Apply middleware in reverse order so the first middleware is the outermost
		for i := len(middleware) - 1; i >= 0; i-- {
			if middleware[i] != nil {
				transport = middleware[i].Wrap(transport)
			}
		}
		return transport
	})
}

// middlewareTransport is a base type for middleware implementations
type middlewareTransport struct {
	next Transport
}

// SendRequest delegates to the wrapped transport
func (m *middlewareTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	return m.next.SendRequest(ctx, req)
}

// Close delegates to the wrapped transport
func (m *middlewareTransport) Close() error {
	return m.next.Close()
}

// MiddlewareBuilder builds middleware from configuration
type MiddlewareBuilder struct {
	config TransportConfig
}

// NewMiddlewareBuilder creates a new middleware builder
func NewMiddlewareBuilder(config TransportConfig) *MiddlewareBuilder {
	return &MiddlewareBuilder{config: config}
}

// Build constructs the middleware chain, outermost first: authentication,
// reliability, rate limiting. Each retry attempt therefore waits for the
// rate limiter.
func (mb *MiddlewareBuilder) Build() []Middleware {
	var middleware []Middleware

	if mb.config.Features.EnableAuthentication && mb.config.Security.Authentication != nil {
		if authFactory := GetAuthMiddlewareFactory(); authFactory != nil {
			if authMiddleware := authFactory(mb.config.Security.Authentication); authMiddleware != nil {
				middleware = append(middleware, authMiddleware)
			}
		} else {
			middleware = append(middleware, NewStaticAuthMiddleware(mb.config.Security.Authentication))
		}
	}

	if mb.config.Features.EnableReliability {
		middleware = append(middleware, NewReliabilityMiddleware(mb.config.Reliability, mb.config.Logger))
	}

	if mb.config.Features.EnableRateLimiting && mb.config.Security.RateLimit != nil {
		middleware = append(middleware, NewRateLimitMiddleware(*mb.config.Security.RateLimit))
	}

	return middleware
}

// AuthMiddlewareFactory is a function that creates auth middleware from config
type AuthMiddlewareFactory func(*AuthenticationConfig) Middleware

var (
	factoryMu             sync.RWMutex
	authMiddlewareFactory AuthMiddlewareFactory
)

// RegisterAuthMiddlewareFactory registers the auth middleware factory.
// This is called by the auth package to avoid import cycles.
func RegisterAuthMiddlewareFactory(factory AuthMiddlewareFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	authMiddlewareFactory = factory
}

// GetAuthMiddlewareFactory returns the registered auth middleware factory
func GetAuthMiddlewareFactory() AuthMiddlewareFactory {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	return authMiddlewareFactory
}

// NewStaticAuthMiddleware sets a fixed Authorization header from config. It
// is used when no auth package factory is registered.
func NewStaticAuthMiddleware(config *AuthenticationConfig) Middleware {
	header := authorizationHeader(config)
	return MiddlewareFunc(func(next Transport) Transport {
		return &staticAuthTransport{middlewareTransport: middlewareTransport{next: next}, header: header}
	})
}

type staticAuthTransport struct {
	middlewareTransport
	header string
}

func (t *staticAuthTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	if t.header != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", t.header)
	}
	return t.next.SendRequest(ctx, req)
}
