// Package jolokia is a Go client for Jolokia, the JMX-over-HTTP bridge.
//
// A Jolokia agent exposes the MBeans of a JVM over plain HTTP GET requests
// and answers with a JSON envelope. This package is the root of the SDK and
// re-exports the most common constructors from the sub-packages.
//
// # Overview
//
// The SDK consists of several sub-packages:
//
//   - pkg/client: the client, one method per agent endpoint
//   - pkg/protocol: request paths, escaping and envelope decoding
//   - pkg/model: MBean, Attribute, Operation and Argument
//   - pkg/registry: the merged view of listed MBeans
//   - pkg/transport: HTTP transport and middleware (auth, retry, rate limit)
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//   - pkg/watch: periodic attribute polling
//   - pkg/errors: transport, malformed-response and protocol-status errors
//
// # Creating a Client
//
//	c, err := jolokia.NewClient(jolokia.AgentURL("http", "localhost", 8778))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Refresh(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	memory, err := c.Registry().MBean("java.lang", "type=Memory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	usage, err := client.Read[map[string]int64](ctx, c, memory.Attributes["HeapMemoryUsage"])
//
// # Custom Transports
//
// Authentication, retries, rate limiting and metrics are transport
// middleware. Build the transport yourself to enable them:
//
//	cfg := jolokia.DefaultTransportConfig(transport.TransportTypeHTTP)
//	cfg.Features.EnableAuthentication = true
//	cfg.Security.Authentication = &transport.AuthenticationConfig{
//	    Type: "basic", Username: "jolokia", Password: "secret",
//	}
//	t, err := jolokia.NewTransport(cfg)
//	c, err := jolokia.New("https://app.example.com/jolokia", t)
//
// Import pkg/auth for basic and bearer credentials with token refresh;
// without it the credentials are sent as a static Authorization header.
package jolokia
