// Package client implements a Jolokia agent client.
//
// A Client sends one HTTP GET per call through a transport.Transport and
// decodes the response envelope. MBean metadata returned by list calls is
// merged into a registry.Registry, from which attributes and operations are
// taken for later reads, writes and executions.
//
// # Creating a Client
//
//	t, err := transport.NewTransport(transport.DefaultTransportConfig(transport.TransportTypeHTTP))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := client.New("http://localhost:8778/jolokia", t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
// # Loading Metadata
//
// LoadList accepts three scopes. An empty domain lists the whole agent, a
// domain alone lists that domain, and a domain plus MBean name lists one
// MBean. Each scope replaces what it covers and leaves the rest of the
// registry as it was:
//
//	if err := c.LoadList(ctx, "java.lang", "type=Memory"); err != nil {
//	    return err
//	}
//	memory, err := c.Registry().MBean("java.lang", "type=Memory")
//
// # Reading and Executing
//
// Read and Execute decode the envelope value into any type:
//
//	usage, err := client.Read[map[string]int64](ctx, c, memory.Attributes["HeapMemoryUsage"])
//	_, err = client.Execute[json.RawMessage](ctx, c, memory.Operations["gc"])
//
// Execute checks the argument count against the operation signature before
// sending anything. Overloaded operations are not listed and cannot be
// invoked.
//
// # Errors
//
// Failures are one of three kinds from the errors package:
// TransportError when no usable response arrived, MalformedResponseError
// when the body is not a valid envelope, and ProtocolStatusError when the
// agent answered with a non-200 status. Each carries the request ID that was
// sent in the X-Request-ID header.
package client
