package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
)

// Request is one GET against the agent
type Request struct {
	// Operation is the endpoint kind (version, list, read, write, exec).
	// It labels logs, metrics and errors.
	Operation string
	// URL is the complete request URL including the mimeType query
	URL *url.URL
	// Header holds per-request headers added by middleware
	Header http.Header
}

// NewRequest creates a Request with an empty header set
func NewRequest(operation string, u *url.URL) *Request {
	return &Request{
		Operation: operation,
		URL:       u,
		Header:    make(http.Header),
	}
}

// Transport sends requests to a Jolokia agent
type Transport interface {
	// SendRequest performs the request and returns the response body
	SendRequest(ctx context.Context, req *Request) ([]byte, error)

	// Close releases idle connections
	Close() error
}

// TransportType identifies the base transport implementation
type TransportType string

const (
	TransportTypeHTTP TransportType = "http"
)

// TransportConfig is the configuration for NewTransport
type TransportConfig struct {
	// Type of transport to create
	Type TransportType `json:"type"`

	// Headers are sent with every request
	Headers map[string]string `json:"headers,omitempty"`

	// HTTPClient replaces the client built from Connection and Security.TLS
	HTTPClient *http.Client `json:"-"`

	// Logger receives transport logs; nil disables them
	Logger logging.Logger `json:"-"`

	Features      FeatureConfig       `json:"features"`
	Connection    ConnectionConfig    `json:"connection"`
	Reliability   ReliabilityConfig   `json:"reliability"`
	Observability ObservabilityConfig `json:"observability"`
	Performance   PerformanceConfig   `json:"performance"`
	Security      SecurityConfig      `json:"security"`
}

// FeatureConfig controls which middleware are enabled
type FeatureConfig struct {
	EnableReliability    bool `json:"enable_reliability"`
	EnableAuthentication bool `json:"enable_authentication"`
	EnableRateLimiting   bool `json:"enable_rate_limiting"`
}

// ConnectionConfig for connection management
type ConnectionConfig struct {
	Timeout         time.Duration `json:"timeout"`
	KeepAlive       time.Duration `json:"keep_alive"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	MaxConnsPerHost int           `json:"max_conns_per_host"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout"`
}

// ReliabilityConfig for retry and resilience
type ReliabilityConfig struct {
	MaxRetries        int                  `json:"max_retries"`
	InitialRetryDelay time.Duration        `json:"initial_retry_delay"`
	MaxRetryDelay     time.Duration        `json:"max_retry_delay"`
	CircuitBreaker    CircuitBreakerConfig `json:"circuit_breaker"`
}

// CircuitBreakerConfig for circuit breaker pattern
type CircuitBreakerConfig struct {
	Enabled bool `json:"enabled"`
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int `json:"failure_threshold"`
	// HalfOpenRequests is the number of trial requests allowed while half-open
	HalfOpenRequests int `json:"half_open_requests"`
	// Timeout is how long the circuit stays open
	Timeout time.Duration `json:"timeout"`
	// Interval clears the failure counts while closed; zero never clears
	Interval time.Duration `json:"interval"`
}

// ObservabilityConfig for transport logging
type ObservabilityConfig struct {
	// EnableLogging logs every HTTP exchange at debug level
	EnableLogging bool `json:"enable_logging"`
}

// PerformanceConfig for performance tuning
type PerformanceConfig struct {
	// RequestTimeout bounds a single HTTP exchange; zero relies on the context
	RequestTimeout time.Duration `json:"request_timeout"`
	// MaxResponseBytes caps the body size read from the agent
	MaxResponseBytes int64 `json:"max_response_bytes"`
}

// SecurityConfig configures authentication, TLS and rate limiting
type SecurityConfig struct {
	Authentication *AuthenticationConfig `json:"authentication,omitempty"`
	TLS            *TLSConfig            `json:"tls,omitempty"`
	RateLimit      *RateLimitConfig      `json:"rate_limit,omitempty"`
}

// AuthenticationConfig configures the credentials sent to the agent
type AuthenticationConfig struct {
	// Type is "basic" or "bearer"
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
	Token    string `json:"-"`
}

// TLSConfig configures TLS settings
type TLSConfig struct {
	CertFile           string `json:"cert_file,omitempty"`
	KeyFile            string `json:"key_file,omitempty"`
	CAFile             string `json:"ca_file,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	MinVersion         string `json:"min_version,omitempty"`
}

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
}

// Errors
var (
	ErrUnsupportedTransportType = errors.New("unsupported transport type")
)

// NewTransport creates a transport with the specified configuration. extra
// middleware wrap the configured ones, the first being outermost.
func NewTransport(config TransportConfig, extra ...Middleware) (Transport, error) {
	if err := validateTransportConfig(config); err != nil {
		return nil, err
	}

	var base Transport
	switch config.Type {
	case TransportTypeHTTP:
		httpTransport, err := NewHTTPTransport(config)
		if err != nil {
			return nil, err
		}
		base = httpTransport
	default:
		return nil, ErrUnsupportedTransportType
	}

	middleware := append(append([]Middleware{}, extra...), NewMiddlewareBuilder(config).Build()...)
	return ChainMiddleware(middleware...).Wrap(base), nil
}

// validateTransportConfig validates the transport configuration
func validateTransportConfig(config TransportConfig) error {
	if config.Type != TransportTypeHTTP {
		return ErrUnsupportedTransportType
	}

	if config.Features.EnableAuthentication {
		auth := config.Security.Authentication
		if auth == nil {
			return errors.New("authentication enabled without credentials")
		}
		switch auth.Type {
		case "basic", "bearer":
		default:
			return fmt.Errorf("unsupported authentication type %q", auth.Type)
		}
	}

	if config.Features.EnableRateLimiting {
		rl := config.Security.RateLimit
		if rl == nil || rl.RequestsPerSecond <= 0 {
			return errors.New("rate limiting enabled without a positive requests_per_second")
		}
	}

	if config.Reliability.MaxRetries < 0 {
		return errors.New("max_retries must not be negative")
	}

	return nil
}

// DefaultTransportConfig returns a transport configuration with sensible
// defaults. Reliability, authentication and rate limiting are off.
func DefaultTransportConfig(transportType TransportType) TransportConfig {
	return TransportConfig{
		Type: transportType,
		Connection: ConnectionConfig{
			Timeout:         10 * time.Second,
			KeepAlive:       30 * time.Second,
			MaxIdleConns:    100,
			MaxConnsPerHost: 10,
			IdleConnTimeout: 90 * time.Second,
		},
		Reliability: ReliabilityConfig{
			MaxRetries:        3,
			InitialRetryDelay: 200 * time.Millisecond,
			MaxRetryDelay:     5 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				HalfOpenRequests: 1,
				Timeout:          30 * time.Second,
			},
		},
		Performance: PerformanceConfig{
			RequestTimeout:   30 * time.Second,
			MaxResponseBytes: 64 << 20,
		},
	}
}
