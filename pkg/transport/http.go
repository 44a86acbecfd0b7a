package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
)

// UserAgent is sent with every request
const UserAgent = "jolokia-sdk-go"

// HTTPTransport implements Transport with net/http
type HTTPTransport struct {
	client  *http.Client
	maxBody int64
	logger  logging.Logger

	mu      sync.RWMutex
	headers http.Header
}

// NewHTTPTransport creates an HTTP transport from config. Only the Connection,
// Performance, Security.TLS and Headers sections are used here; middleware
// sections are applied by NewTransport.
func NewHTTPTransport(config TransportConfig) (*HTTPTransport, error) {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithFields(logging.String("component", "HTTPTransport"))

	client := config.HTTPClient
	if client == nil {
		var err error
		client, err = newHTTPClient(config, logger)
		if err != nil {
			return nil, err
		}
	}

	headers := make(http.Header)
	for k, v := range config.Headers {
		headers.Set(k, v)
	}

	maxBody := config.Performance.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = DefaultTransportConfig(TransportTypeHTTP).Performance.MaxResponseBytes
	}

	t := &HTTPTransport{
		client:  client,
		maxBody: maxBody,
		logger:  logger,
		headers: headers,
	}

	// Credentials in the config are applied here when no auth middleware handles them
	if auth := config.Security.Authentication; auth != nil && !config.Features.EnableAuthentication {
		if h := authorizationHeader(auth); h != "" {
			t.headers.Set("Authorization", h)
		}
	}

	return t, nil
}

func newHTTPClient(config TransportConfig, logger logging.Logger) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   config.Connection.Timeout,
		KeepAlive: config.Connection.KeepAlive,
	}

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        config.Connection.MaxIdleConns,
		MaxIdleConnsPerHost: config.Connection.MaxConnsPerHost,
		MaxConnsPerHost:     config.Connection.MaxConnsPerHost,
		IdleConnTimeout:     config.Connection.IdleConnTimeout,
		TLSHandshakeTimeout: config.Connection.Timeout,
	}

	if config.Security.TLS != nil {
		tlsConfig, err := buildTLSConfig(config.Security.TLS)
		if err != nil {
			return nil, err
		}
		base.TLSClientConfig = tlsConfig
	}

	var rt http.RoundTripper = base
	if config.Observability.EnableLogging {
		rt = logging.RoundTripper(logger, rt)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   config.Performance.RequestTimeout,
	}, nil
}

func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed agents
		MinVersion:         tls.VersionTLS12,
	}

	switch cfg.MinVersion {
	case "", "1.2":
	case "1.3":
		tlsConfig.MinVersion = tls.VersionTLS13
	default:
		return nil, jerrors.InvalidParameter("tls.min_version", cfg.MinVersion, "expected 1.2 or 1.3")
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, jerrors.InvalidParameter("tls.ca_file", cfg.CAFile, "no certificates found")
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" || cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// SetHeader sets a header sent with every request
func (t *HTTPTransport) SetHeader(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.headers.Set(key, value)
}

// SetBasicAuth sends HTTP basic credentials with every request
func (t *HTTPTransport) SetBasicAuth(username, password string) {
	t.SetHeader("Authorization", authorizationHeader(&AuthenticationConfig{
		Type:     "basic",
		Username: username,
		Password: password,
	}))
}

// SetBearerToken sends a bearer token with every request
func (t *HTTPTransport) SetBearerToken(token string) {
	t.SetHeader("Authorization", "Bearer "+token)
}

// SendRequest performs a GET for req.URL.
// A body is returned for every HTTP status when it looks like JSON, so the
// envelope status decides success. Other error responses become a
// *errors.TransportError carrying the HTTP status.
func (t *HTTPTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	endpoint := req.URL.Redacted()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL.String(), nil)
	if err != nil {
		return nil, jerrors.NewTransportError(req.Operation, endpoint, 0, err)
	}

	t.mu.RLock()
	for k, values := range t.headers {
		httpReq.Header[k] = append([]string(nil), values...)
	}
	t.mu.RUnlock()
	for k, values := range req.Header {
		httpReq.Header[k] = append([]string(nil), values...)
	}
	httpReq.Header.Set("Accept", "application/json")
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", UserAgent)
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		httpReq.Header.Set(logging.RequestIDHeader, requestID)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		// Prefer the context error so cancellation is classified as such
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, jerrors.NewTransportError(req.Operation, endpoint, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, jerrors.NewTransportError(req.Operation, endpoint, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	if int64(len(body)) > t.maxBody {
		return nil, jerrors.NewTransportError(req.Operation, endpoint, 0, fmt.Errorf("response exceeds %d bytes", t.maxBody))
	}

	if resp.StatusCode >= http.StatusBadRequest && !looksLikeJSON(body) {
		t.logger.Debug("non-JSON error response",
			logging.String("operation", req.Operation),
			logging.Int("status", resp.StatusCode),
		)
		return nil, jerrors.NewTransportError(req.Operation, endpoint, resp.StatusCode, nil)
	}

	return body, nil
}

// Close releases idle connections
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

func looksLikeJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func authorizationHeader(config *AuthenticationConfig) string {
	if config == nil {
		return ""
	}
	switch config.Type {
	case "basic":
		creds := config.Username + ":" + config.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case "bearer":
		if config.Token == "" {
			return ""
		}
		return "Bearer " + config.Token
	default:
		return ""
	}
}
