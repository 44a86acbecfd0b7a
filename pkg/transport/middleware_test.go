package transport

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

func okBody() []byte { return []byte(`{"status":200,"value":1}`) }

func TestChainMiddleware_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return MiddlewareFunc(func(next Transport) Transport {
			mock := NewMockTransport()
			mock.Handler = func(ctx context.Context, req *Request) ([]byte, error) {
				order = append(order, name)
				return next.SendRequest(ctx, req)
			}
			return mock
		})
	}

	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) {
		order = append(order, "base")
		return okBody(), nil
	}

	tr := ChainMiddleware(tag("outer"), nil, tag("inner")).Wrap(base)
	_, err := tr.SendRequest(context.Background(), NewRequest("version", mustURL(t, "http://agent/jolokia/version")))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "base"}, order)
}

func TestStaticAuthMiddleware(t *testing.T) {
	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) { return okBody(), nil }

	tr := NewStaticAuthMiddleware(&AuthenticationConfig{Type: "bearer", Token: "t0k"}).Wrap(base)
	_, err := tr.SendRequest(context.Background(), NewRequest("read", mustURL(t, "http://agent/jolokia/read/a:b=c/X")))
	require.NoError(t, err)
	assert.Equal(t, "Bearer t0k", base.Requests()[0].Header.Get("Authorization"))

	require.NoError(t, tr.Close())
	assert.True(t, base.IsClosed())
}

func TestMiddlewareBuilder_UsesRegisteredAuthFactory(t *testing.T) {
	var built int32
	RegisterAuthMiddlewareFactory(func(*AuthenticationConfig) Middleware {
		atomic.AddInt32(&built, 1)
		return MiddlewareFunc(func(next Transport) Transport { return next })
	})
	defer RegisterAuthMiddlewareFactory(nil)

	config := DefaultTransportConfig(TransportTypeHTTP)
	config.Features.EnableAuthentication = true
	config.Security.Authentication = &AuthenticationConfig{Type: "basic", Username: "u"}

	mw := NewMiddlewareBuilder(config).Build()
	assert.Len(t, mw, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&built))
}

func TestMiddlewareBuilder_Features(t *testing.T) {
	config := DefaultTransportConfig(TransportTypeHTTP)
	assert.Empty(t, NewMiddlewareBuilder(config).Build())

	config.Features.EnableReliability = true
	config.Features.EnableRateLimiting = true
	config.Security.RateLimit = &RateLimitConfig{RequestsPerSecond: 10, BurstSize: 1}
	assert.Len(t, NewMiddlewareBuilder(config).Build(), 2)
}

func TestNewTransport_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TransportConfig)
	}{
		{"unknown type", func(c *TransportConfig) { c.Type = "stdio" }},
		{"auth without credentials", func(c *TransportConfig) { c.Features.EnableAuthentication = true }},
		{"unsupported auth type", func(c *TransportConfig) {
			c.Features.EnableAuthentication = true
			c.Security.Authentication = &AuthenticationConfig{Type: "digest"}
		}},
		{"rate limit without rate", func(c *TransportConfig) { c.Features.EnableRateLimiting = true }},
		{"negative retries", func(c *TransportConfig) { c.Reliability.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultTransportConfig(TransportTypeHTTP)
			tt.modify(&config)
			_, err := NewTransport(config)
			assert.Error(t, err)
		})
	}

	tr, err := NewTransport(DefaultTransportConfig(TransportTypeHTTP))
	require.NoError(t, err)
	assert.NoError(t, tr.Close())
}

func fastReliability() ReliabilityConfig {
	return ReliabilityConfig{
		MaxRetries:        3,
		InitialRetryDelay: time.Millisecond,
		MaxRetryDelay:     5 * time.Millisecond,
	}
}

func TestReliabilityMiddleware_RetriesTransientFailures(t *testing.T) {
	agent := NewMockAgent()
	defer agent.Close()
	agent.SetValue("version", map[string]interface{}{"agent": "1.3.7"})
	agent.FailNext(2, http.StatusServiceUnavailable)

	config := DefaultTransportConfig(TransportTypeHTTP)
	config.Features.EnableReliability = true
	config.Reliability = fastReliability()

	tr, err := NewTransport(config)
	require.NoError(t, err)

	body, err := tr.SendRequest(context.Background(), NewRequest("version", mustURL(t, agent.URL()+"/version")))
	require.NoError(t, err)
	assert.Contains(t, string(body), "1.3.7")
	assert.Equal(t, 3, agent.RequestCount())
}

func TestReliabilityMiddleware_GivesUp(t *testing.T) {
	var calls int32
	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, jerrors.NewTransportError("read", "http://agent", http.StatusBadGateway, nil)
	}

	tr := NewReliabilityMiddleware(fastReliability(), nil).Wrap(base)
	_, err := tr.SendRequest(context.Background(), NewRequest("read", mustURL(t, "http://agent/jolokia/read/a:b=c/X")))

	var tErr *jerrors.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestReliabilityMiddleware_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", jerrors.NewTransportError("read", "", http.StatusUnauthorized, nil)},
		{"protocol status", jerrors.NewProtocolStatusError(404, "javax.management.InstanceNotFoundException", "missing", nil)},
		{"malformed", jerrors.NewMalformedResponseError("missing status", []byte("{}"), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			base := NewMockTransport()
			base.Handler = func(context.Context, *Request) ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				return nil, tt.err
			}

			tr := NewReliabilityMiddleware(fastReliability(), nil).Wrap(base)
			_, err := tr.SendRequest(context.Background(), NewRequest("read", mustURL(t, "http://agent/jolokia/read")))
			assert.ErrorIs(t, err, tt.err)
			assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		})
	}
}

func TestReliabilityMiddleware_CircuitBreaker(t *testing.T) {
	var calls int32
	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, jerrors.NewTransportError("read", "", http.StatusServiceUnavailable, nil)
	}

	config := ReliabilityConfig{
		MaxRetries: 0,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			Timeout:          time.Minute,
		},
	}
	mw := NewReliabilityMiddleware(config, nil)
	tr := mw.Wrap(base)
	req := NewRequest("read", mustURL(t, "http://agent/jolokia/read"))

	for i := 0; i < 2; i++ {
		_, err := tr.SendRequest(context.Background(), req)
		require.Error(t, err)
	}
	assert.Equal(t, "open", mw.(*ReliabilityMiddleware).State())

	_, err := tr.SendRequest(context.Background(), req)
	assert.True(t, jerrors.IsCode(err, jerrors.CodeCircuitOpen))
	assert.False(t, jerrors.IsRetryable(err))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestReliabilityMiddleware_PermanentErrorsKeepCircuitClosed(t *testing.T) {
	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) {
		return nil, jerrors.NewProtocolStatusError(404, "javax.management.InstanceNotFoundException", "missing", nil)
	}

	config := ReliabilityConfig{CircuitBreaker: CircuitBreakerConfig{Enabled: true, FailureThreshold: 1}}
	mw := NewReliabilityMiddleware(config, nil)
	tr := mw.Wrap(base)

	for i := 0; i < 3; i++ {
		_, err := tr.SendRequest(context.Background(), NewRequest("read", mustURL(t, "http://agent/jolokia/read")))
		assert.True(t, jerrors.IsProtocolStatus(err, 404))
	}
	assert.Equal(t, "closed", mw.(*ReliabilityMiddleware).State())
}

func TestReliabilityMiddleware_StopsOnCancel(t *testing.T) {
	base := NewMockTransport()
	ctx, cancel := context.WithCancel(context.Background())
	base.Handler = func(context.Context, *Request) ([]byte, error) {
		cancel()
		return nil, jerrors.NewTransportError("read", "", http.StatusServiceUnavailable, nil)
	}

	config := fastReliability()
	config.InitialRetryDelay = time.Second
	tr := NewReliabilityMiddleware(config, nil).Wrap(base)

	_, err := tr.SendRequest(ctx, NewRequest("read", mustURL(t, "http://agent/jolokia/read")))
	require.Error(t, err)
	assert.LessOrEqual(t, base.CallCount(), 2)
}

func TestRateLimitMiddleware(t *testing.T) {
	base := NewMockTransport()
	base.Handler = func(context.Context, *Request) ([]byte, error) { return okBody(), nil }

	tr := NewRateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}).Wrap(base)
	req := NewRequest("read", mustURL(t, "http://agent/jolokia/read"))

	_, err := tr.SendRequest(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tr.SendRequest(ctx, req)
	require.Error(t, err)
	assert.True(t, jerrors.IsCategory(err, jerrors.CategoryTimeout))
	assert.Equal(t, 1, base.CallCount())
}
