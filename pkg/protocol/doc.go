// Package protocol defines the wire-level pieces of the Jolokia protocol.
//
// Jolokia exposes JMX MBeans over HTTP. Every request is a GET whose path
// names the endpoint kind followed by its arguments, and every response is a
// JSON envelope of the form
//
//	{"status": 200, "timestamp": 1700000000, "value": ...}
//
// # Package Organization
//
//   - path.go: PathBuilder, which turns endpoint arguments into request URLs
//   - envelope.go: Envelope and Decode, which unwrap and validate responses
//   - agent.go: AgentInfo and endpoint constants
//
// # Path Segments
//
// Each segment is escaped the way the agent expects: "!" becomes "!!" and "/"
// becomes "!/", then the segment is percent-escaped. The ":" separating an
// MBean domain from its key properties is kept literal. Empty string
// arguments are sent as "" and absent history filters as [null].
//
// The base URL always carries mimeType=application/json so the agent never
// answers with JSONP.
package protocol
