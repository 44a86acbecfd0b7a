package jolokia

import (
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/client"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// Version represents the current version of the SDK
const Version = "1.0.0"

// These exports provide direct access to the core SDK components
var (
	// New creates a client over a caller-supplied transport
	New = client.New

	// NewHTTPTransport creates a plain HTTP transport
	NewHTTPTransport = transport.NewHTTPTransport

	// NewTransport creates a transport with the configured middleware
	NewTransport = transport.NewTransport

	// DefaultTransportConfig returns the default transport configuration
	DefaultTransportConfig = transport.DefaultTransportConfig

	// AgentURL builds scheme://host:port/jolokia
	AgentURL = protocol.AgentURL
)

// Client options
var (
	WithLogger             = client.WithLogger
	WithName               = client.WithName
	WithRegistry           = client.WithRegistry
	WithRequestIDGenerator = client.WithRequestIDGenerator
)

// NewClient creates a client for the agent at baseURL using an HTTP
// transport with default settings.
func NewClient(baseURL string, opts ...client.Option) (*client.Client, error) {
	t, err := transport.NewTransport(transport.DefaultTransportConfig(transport.TransportTypeHTTP))
	if err != nil {
		return nil, err
	}
	c, err := client.New(baseURL, t, opts...)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return c, nil
}
