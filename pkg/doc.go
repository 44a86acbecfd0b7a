// Package pkg holds the components of the Jolokia SDK.
//
// # Sub-packages
//
//   - client: the agent client and its typed Read and Execute helpers
//   - protocol: endpoint paths, Jolokia escaping and envelope decoding
//   - model: MBean metadata and its construction from list responses
//   - registry: scoped merging and queries over listed MBeans
//   - errors: the categorised error types returned by every package
//   - transport: the HTTP transport and its middleware chain
//   - auth: basic and bearer credential middleware
//   - logging: structured logging with a zap backend
//   - observability: Prometheus metrics and OpenTelemetry tracing middleware
//   - watch: interval polling of attributes
//   - utils: goroutine leak detection for tests
package pkg
