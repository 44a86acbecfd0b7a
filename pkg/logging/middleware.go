package logging

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID to the agent, so it shows up in
// access logs of the JVM's HTTP server.
const RequestIDHeader = "X-Request-ID"

// RoundTripper logs every outgoing HTTP request made through next and
// forwards the context's request ID, generating one when absent.
func RoundTripper(logger Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingRoundTripper{logger: logger, next: next}
}

type loggingRoundTripper struct {
	logger Logger
	next   http.RoundTripper
}

func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := RequestIDFromContext(req.Context())
	if requestID == "" {
		requestID = uuid.NewString()
		req = req.WithContext(ContextWithRequestID(req.Context(), requestID))
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, requestID)
	}

	reqLogger := rt.logger.WithFields(
		String(requestIDField, requestID),
		String("method", req.Method),
		String("path", req.URL.Path),
	)
	reqLogger.Debug("HTTP request started")

	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		reqLogger.WithError(err).Warn("HTTP request failed", Duration("duration", duration))
		return nil, err
	}

	reqLogger.Debug("HTTP request completed",
		Int("status", resp.StatusCode),
		Duration("duration", duration),
	)
	return resp, nil
}
