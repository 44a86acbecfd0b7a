package transport

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

// NewRateLimitMiddleware limits the request rate to the agent. Requests wait
// for a token and fail only when the context ends first.
func NewRateLimitMiddleware(config RateLimitConfig) Middleware {
	burst := config.BurstSize
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)

	return MiddlewareFunc(func(next Transport) Transport {
		return &rateLimitTransport{
			middlewareTransport: middlewareTransport{next: next},
			limiter:             limiter,
		}
	})
}

type rateLimitTransport struct {
	middlewareTransport
	limiter *rate.Limiter
}

func (t *rateLimitTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		} else if _, ok := ctx.Deadline(); ok {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, jerrors.NewTransportError(req.Operation, req.URL.Redacted(), 0, fmt.Errorf("rate limit wait: %w", err))
	}
	return t.next.SendRequest(ctx, req)
}
