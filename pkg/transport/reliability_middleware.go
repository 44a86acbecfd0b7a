package transport

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
)

// ReliabilityMiddleware retries transient transport failures with
// exponential backoff and trips a circuit breaker on repeated failures.
// Only errors classified as retryable by errors.IsRetryable are retried;
// envelope errors are never retried.
type ReliabilityMiddleware struct {
	config  ReliabilityConfig
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// NewReliabilityMiddleware creates a new reliability middleware
func NewReliabilityMiddleware(config ReliabilityConfig, logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rm := &ReliabilityMiddleware{
		config: config,
		logger: logger.WithFields(logging.String("component", "ReliabilityMiddleware")),
	}

	if config.CircuitBreaker.Enabled {
		rm.breaker = newCircuitBreaker(config.CircuitBreaker, rm.logger)
	}

	return rm
}

func newCircuitBreaker(config CircuitBreakerConfig, logger logging.Logger) *gobreaker.CircuitBreaker {
	threshold := uint32(5)
	if config.FailureThreshold > 0 {
		threshold = uint32(config.FailureThreshold)
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "jolokia-agent",
		MaxRequests: uint32(max(config.HalfOpenRequests, 1)),
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// The agent answered, or the caller gave up; neither says the agent is down
		IsSuccessful: func(err error) bool {
			return err == nil || !jerrors.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})
}

// Wrap implements the Middleware interface
func (rm *ReliabilityMiddleware) Wrap(transport Transport) Transport {
	return &reliabilityTransport{
		middlewareTransport: middlewareTransport{next: transport},
		middleware:          rm,
	}
}

// State reports the circuit breaker state, or "disabled"
func (rm *ReliabilityMiddleware) State() string {
	if rm.breaker == nil {
		return "disabled"
	}
	return rm.breaker.State().String()
}

type reliabilityTransport struct {
	middlewareTransport
	middleware *ReliabilityMiddleware
}

// SendRequest wraps the underlying SendRequest with retry logic
func (rt *reliabilityTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	config := rt.middleware.config
	logger := rt.middleware.logger.WithContext(ctx)

	var body []byte
	attempt := 0
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(config.MaxRetries)+1),
		retry.Delay(config.InitialRetryDelay),
		retry.MaxDelay(config.MaxRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(jerrors.IsRetryable),
		retry.DelayType(func(n uint, err error, dc retry.DelayContext) time.Duration {
			logger.Debug("retrying request",
				logging.String("operation", req.Operation),
				logging.Int("attempt", int(n)+1),
				logging.ErrorField(err),
			)
			return retry.BackOffDelay(n, err, dc)
		}),
	).Do(func() error {
		attempt++
		var sendErr error
		body, sendErr = rt.attempt(ctx, req)
		return sendErr
	})
	if err == nil {
		return body, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = jerrors.NewTransportError(req.Operation, req.URL.Redacted(), 0, ctxErr)
	}
	if attempt > 1 {
		logger.Warn("request failed after retries",
			logging.String("operation", req.Operation),
			logging.Int("attempts", attempt),
			logging.ErrorField(err),
		)
	}
	return nil, err
}

func (rt *reliabilityTransport) attempt(ctx context.Context, req *Request) ([]byte, error) {
	breaker := rt.middleware.breaker
	if breaker == nil {
		return rt.next.SendRequest(ctx, req)
	}

	result, err := breaker.Execute(func() (interface{}, error) {
		return rt.next.SendRequest(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, jerrors.CircuitOpen(req.Operation, err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
