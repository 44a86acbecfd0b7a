package auth

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// TokenSource fetches a bearer token. A zero expiresAt means the token does
// not expire.
type TokenSource func(ctx context.Context) (token string, expiresAt time.Time, err error)

// BearerTokenConfig configures the bearer token provider
type BearerTokenConfig struct {
	// Token is a static token; ignored when Source is set
	Token string

	// Source fetches tokens on demand
	Source TokenSource

	// RefreshThreshold fetches a new token this long before expiry (default: 30s)
	RefreshThreshold time.Duration

	// Now is the clock used for expiry checks (default: time.Now)
	Now func() time.Time
}

// BearerTokenProvider sends a bearer token, caching tokens from a
// TokenSource until shortly before they expire.
type BearerTokenProvider struct {
	source    TokenSource
	threshold time.Duration
	now       func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewBearerTokenProvider creates a new bearer token provider.
func NewBearerTokenProvider(config *BearerTokenConfig) (*BearerTokenProvider, error) {
	if config == nil || (config.Token == "" && config.Source == nil) {
		return nil, NewAuthError(ErrInvalidCredentials, "token or token source required")
	}

	p := &BearerTokenProvider{
		source:    config.Source,
		threshold: config.RefreshThreshold,
		now:       config.Now,
	}
	if p.threshold == 0 {
		p.threshold = 30 * time.Second
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.source == nil {
		p.token = config.Token
	}

	return p, nil
}

// Type returns "bearer"
func (p *BearerTokenProvider) Type() string {
	return "bearer"
}

// Apply sets the Authorization header, fetching a token when needed
func (p *BearerTokenProvider) Apply(ctx context.Context, h http.Header) error {
	token, err := p.Token(ctx)
	if err != nil {
		return err
	}
	h.Set("Authorization", "Bearer "+token)
	return nil
}

// Token returns the current token
func (p *BearerTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && !p.expiring() {
		return p.token, nil
	}
	if p.source == nil {
		return "", NewAuthError(ErrTokenExpired, "static token expired")
	}

	token, expiresAt, err := p.source(ctx)
	if err != nil {
		return "", NewAuthError(ErrTokenUnavailable, "failed to fetch token").WithCause(err)
	}
	if token == "" {
		return "", NewAuthError(ErrTokenUnavailable, "token source returned an empty token")
	}

	p.token = token
	p.expiresAt = expiresAt
	return token, nil
}

// Invalidate drops the cached token. Static tokens are kept.
func (p *BearerTokenProvider) Invalidate() {
	if p.source == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.expiresAt = time.Time{}
}

func (p *BearerTokenProvider) expiring() bool {
	if p.expiresAt.IsZero() {
		return false
	}
	return !p.now().Add(p.threshold).Before(p.expiresAt)
}
