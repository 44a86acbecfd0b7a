package auth

import (
	"context"
	"errors"
	"net/http"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// AuthMiddleware applies a Provider to every request. When the agent answers
// 401 and the provider is a Refresher, the credential is invalidated and the
// request is sent once more.
type AuthMiddleware struct {
	provider Provider
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(provider Provider) *AuthMiddleware {
	return &AuthMiddleware{provider: provider}
}

// Wrap implements the Middleware interface.
func (m *AuthMiddleware) Wrap(next transport.Transport) transport.Transport {
	return &authTransport{next: next, provider: m.provider}
}

type authTransport struct {
	next     transport.Transport
	provider Provider
}

func (t *authTransport) SendRequest(ctx context.Context, req *transport.Request) ([]byte, error) {
	body, err := t.send(ctx, req)
	if err == nil {
		return body, nil
	}

	refresher, ok := t.provider.(Refresher)
	if !ok || !isUnauthorized(err) {
		return nil, err
	}

	refresher.Invalidate()
	return t.send(ctx, req)
}

func (t *authTransport) send(ctx context.Context, req *transport.Request) ([]byte, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if err := t.provider.Apply(ctx, req.Header); err != nil {
		cause := jerrors.WrapError(err, jerrors.CodeTransportError, "failed to apply credentials", jerrors.CategoryAuth, jerrors.SeverityError)
		return nil, jerrors.WithContext(cause, &jerrors.Context{
			Operation: req.Operation,
			Component: "AuthMiddleware",
		})
	}
	return t.next.SendRequest(ctx, req)
}

func (t *authTransport) Close() error {
	return t.next.Close()
}

func isUnauthorized(err error) bool {
	var tErr *jerrors.TransportError
	return errors.As(err, &tErr) && tErr.StatusCode == http.StatusUnauthorized
}
