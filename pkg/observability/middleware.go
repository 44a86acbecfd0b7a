package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// ObservabilityConfig configures the observability middleware
type ObservabilityConfig struct {
	// Tracing configuration; Tracer takes precedence over TracingConfig
	EnableTracing bool
	TracingConfig TracingConfig
	Tracer        *TracingProvider

	// Metrics configuration; Metrics takes precedence over MetricsConfig
	EnableMetrics bool
	MetricsConfig MetricsConfig
	Metrics       MetricsProvider

	// Logger receives one debug line per request
	Logger logging.Logger

	// CaptureResponseSize records the body size on spans
	CaptureResponseSize bool
}

// ObservabilityMiddleware traces and measures every agent request. Envelope
// statuses are counted from the response body, so a 404 answered with HTTP
// 200 still shows up as a protocol error.
type ObservabilityMiddleware struct {
	config  ObservabilityConfig
	tracer  *TracingProvider
	metrics MetricsProvider
	logger  logging.Logger
}

// NewObservabilityMiddleware creates a new observability middleware
func NewObservabilityMiddleware(config ObservabilityConfig) (*ObservabilityMiddleware, error) {
	m := &ObservabilityMiddleware{
		config:  config,
		tracer:  config.Tracer,
		metrics: config.Metrics,
		logger:  config.Logger,
	}

	if m.tracer == nil && config.EnableTracing {
		t, err := NewTracingProvider(config.TracingConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracing provider: %w", err)
		}
		m.tracer = t
	}

	if m.metrics == nil && config.EnableMetrics {
		p, err := NewMetricsProvider(config.MetricsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		m.metrics = p
	}

	if m.logger == nil {
		m.logger = logging.NewNopLogger()
	}
	m.logger = m.logger.WithFields(logging.String("component", "ObservabilityMiddleware"))

	return m, nil
}

// Tracer returns the tracing provider, or nil when tracing is off
func (m *ObservabilityMiddleware) Tracer() *TracingProvider {
	return m.tracer
}

// Metrics returns the metrics provider, or nil when metrics are off
func (m *ObservabilityMiddleware) Metrics() MetricsProvider {
	return m.metrics
}

// Shutdown flushes traces and stops the metrics server
func (m *ObservabilityMiddleware) Shutdown(ctx context.Context) error {
	var errs []error
	if m.tracer != nil {
		errs = append(errs, m.tracer.Shutdown(ctx))
	}
	if m.metrics != nil {
		errs = append(errs, m.metrics.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Wrap implements the Middleware interface
func (m *ObservabilityMiddleware) Wrap(next transport.Transport) transport.Transport {
	return &observabilityTransport{middleware: m, next: next}
}

type observabilityTransport struct {
	middleware *ObservabilityMiddleware
	next       transport.Transport
}

func (t *observabilityTransport) SendRequest(ctx context.Context, req *transport.Request) ([]byte, error) {
	m := t.middleware
	start := time.Now()
	requestID := logging.RequestIDFromContext(ctx)

	if m.tracer != nil {
		var span trace.Span
		ctx, span = m.startSpan(ctx, req, requestID)
		defer span.End()
	}

	body, err := t.next.SendRequest(ctx, req)
	duration := time.Since(start)

	outcome := Outcome(err)
	status, hasStatus := 0, false
	if err == nil {
		status, hasStatus = protocol.PeekStatus(body)
		if hasStatus && status != protocol.StatusOK {
			outcome = OutcomeProtocolError
		}
	}

	if m.metrics != nil {
		m.metrics.RecordRequest(ctx, req.Operation, outcome, duration)
		if hasStatus {
			m.metrics.RecordProtocolStatus(ctx, req.Operation, status)
		}
	}

	if m.tracer != nil {
		if hasStatus {
			m.tracer.SetAttributes(ctx, attribute.Int(AttrStatus, status))
			if status != protocol.StatusOK {
				m.tracer.SetStatus(ctx, codes.Error, fmt.Sprintf("agent returned status %d", status))
			}
		}
		if m.config.CaptureResponseSize {
			m.tracer.SetAttributes(ctx, attribute.Int("jolokia.response_bytes", len(body)))
		}
		if err != nil {
			m.tracer.RecordError(ctx, err)
		}
	}

	m.logger.WithContext(ctx).Debug("agent request completed",
		logging.String("operation", req.Operation),
		logging.String("outcome", outcome),
		logging.Duration("duration", duration),
	)

	return body, err
}

func (t *observabilityTransport) Close() error {
	return t.next.Close()
}

func (m *ObservabilityMiddleware) startSpan(ctx context.Context, req *transport.Request, requestID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String(AttrURL, req.URL.Redacted())}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}

	ctx, span := m.tracer.StartOperationSpan(ctx, req.Operation, attrs...)
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	m.tracer.Inject(ctx, propagation.HeaderCarrier(req.Header))
	return ctx, span
}
