package client

import (
	"context"
	"testing"
	"time"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/utils"
)

// TestClientGoroutineLeak checks that requests and Close leave nothing running
func TestClientGoroutineLeak(t *testing.T) {
	agent := newAgent(t)

	detector := utils.NewGoroutineLeakDetector(t).
		SetAllowedGrowth(2).
		SetStabilizeDelay(300 * time.Millisecond)
	detector.Start()

	tr, err := transport.NewHTTPTransport(transport.DefaultTransportConfig(transport.TransportTypeHTTP))
	if err != nil {
		t.Fatalf("Failed to create transport: %v", err)
	}
	c, err := New(agent.URL(), tr, WithName("leak-client"))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	m, err := c.Registry().MBean("java.lang", "type=Memory")
	if err != nil {
		t.Fatalf("MBean not loaded: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := c.ReadRaw(ctx, m.Attributes["HeapMemoryUsage"]); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
	}

	_ = c.Close()
	detector.Check()
}

// TestCancelledRequestGoroutineLeak checks that requests abandoned on
// timeout do not leave goroutines behind
func TestCancelledRequestGoroutineLeak(t *testing.T) {
	agent := newAgent(t)
	agent.SetDelay(time.Second)

	detector := utils.NewGoroutineLeakDetector(t).
		SetAllowedGrowth(2).
		SetStabilizeDelay(300 * time.Millisecond)
	detector.Start()

	tr, err := transport.NewHTTPTransport(transport.DefaultTransportConfig(transport.TransportTypeHTTP))
	if err != nil {
		t.Fatalf("Failed to create transport: %v", err)
	}
	c, err := New(agent.URL(), tr)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		if _, err := c.LoadVersion(ctx); err == nil {
			t.Fatal("Expected timeout error")
		}
		cancel()
	}

	_ = c.Close()
	detector.Check()
}
