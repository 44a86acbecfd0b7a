// Package transport carries Jolokia requests to an agent and returns the raw
// response bodies.
//
// A Transport has one job: send a GET for a fully built request URL and hand
// back the body. Envelope decoding happens in the caller, so a JSON body is
// returned even for HTTP error statuses; only failures that leave no envelope
// to decode (network errors, non-JSON error pages) become errors here.
//
// # Configuration
//
// NewTransport builds an HTTPTransport from a TransportConfig and wraps it in
// the middleware the config enables:
//
//	config := transport.DefaultTransportConfig(transport.TransportTypeHTTP)
//	config.Security.Authentication = &transport.AuthenticationConfig{
//		Type:     "basic",
//		Username: "jolokia",
//		Password: "secret",
//	}
//	t, err := transport.NewTransport(config)
//
// # Middleware
//
// Middleware wrap a Transport and are applied outermost first:
//
//   - authentication: adds credentials to each request (registered by pkg/auth)
//   - reliability: retries retryable transport errors and trips a circuit
//     breaker; disabled by default so failures surface unchanged
//   - rate limiting: bounds the request rate to the agent; disabled by default
//
// Additional middleware, such as the metrics and tracing middleware from
// pkg/observability, are passed to NewTransport and wrap everything else.
package transport
