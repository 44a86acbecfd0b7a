package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/client"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

const baseURL = "http://agent:8778/jolokia"

type memoryUsage struct {
	Used int64 `json:"used"`
	Max  int64 `json:"max"`
}

// BenchmarkClientOperations benchmarks client operations over an in-memory transport
func BenchmarkClientOperations(b *testing.B) {
	b.Run("Read", func(b *testing.B) {
		benchmarkRead(b)
	})

	b.Run("Execute", func(b *testing.B) {
		benchmarkExecute(b)
	})

	b.Run("LoadList/Domain/10", func(b *testing.B) {
		benchmarkLoadDomain(b, 10)
	})

	b.Run("LoadList/Domain/500", func(b *testing.B) {
		benchmarkLoadDomain(b, 500)
	})

	b.Run("ConcurrentReads/10", func(b *testing.B) {
		benchmarkConcurrentReads(b, 10)
	})

	b.Run("ConcurrentReads/100", func(b *testing.B) {
		benchmarkConcurrentReads(b, 100)
	})
}

// BenchmarkProtocol benchmarks path building and envelope decoding
func BenchmarkProtocol(b *testing.B) {
	base, err := protocol.ParseBaseURL(baseURL)
	if err != nil {
		b.Fatal(err)
	}
	paths := protocol.NewPathBuilder(base)

	b.Run("EscapeSegment", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = protocol.EscapeSegment("com.example:type=Cache,name=/tmp/a!b")
		}
	})

	b.Run("Exec", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = paths.Exec("java.lang:type=Memory", "dump", "/tmp/heap.hprof", "", protocol.NullSentinel)
		}
	})

	b.Run("DecodeValue", func(b *testing.B) {
		body := []byte(`{"status":200,"timestamp":1700000000,"value":{"used":20,"max":100}}`)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := protocol.DecodeValue[memoryUsage](body); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchmarkRead(b *testing.B) {
	ctx := context.Background()
	c, attr := createTestClient(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := client.Read[memoryUsage](ctx, c, attr); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkExecute(b *testing.B) {
	ctx := context.Background()
	c, attr := createTestClient(b)
	op := &model.Operation{Name: "gc", Parent: attr.Parent}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := client.Execute[json.RawMessage](ctx, c, op); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkLoadDomain(b *testing.B, mbeans int) {
	ctx := context.Background()

	var sb strings.Builder
	sb.WriteString(`{"status":200,"timestamp":1700000000,"value":{`)
	for i := 0; i < mbeans; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"type=Bean,name=b%d":{"desc":"bean","attr":{"Count":{"type":"int","rw":false}},"op":{"reset":{"args":[],"ret":"void"}}}`, i)
	}
	sb.WriteString(`}}`)
	body := []byte(sb.String())

	mock := transport.NewMockTransport()
	mock.Handler = func(context.Context, *transport.Request) ([]byte, error) {
		return body, nil
	}
	c, err := client.New(baseURL, mock)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := c.LoadList(ctx, "com.example", ""); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkConcurrentReads(b *testing.B, concurrency int) {
	ctx := context.Background()
	c, attr := createTestClient(b)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		wg.Add(concurrency)
		for j := 0; j < concurrency; j++ {
			go func() {
				defer wg.Done()
				_, _ = client.Read[memoryUsage](ctx, c, attr)
			}()
		}
		wg.Wait()
	}
}

// createTestClient returns a client whose transport answers every read of
// HeapMemoryUsage and every exec of gc from memory
func createTestClient(b *testing.B) (*client.Client, *model.Attribute) {
	b.Helper()

	mock := transport.NewMockTransport()
	mock.Handler = func(_ context.Context, req *transport.Request) ([]byte, error) {
		switch req.Operation {
		case protocol.EndpointRead:
			return []byte(`{"status":200,"timestamp":1700000000,"value":{"used":20,"max":100}}`), nil
		case protocol.EndpointExec:
			return []byte(`{"status":200,"timestamp":1700000000,"value":null}`), nil
		default:
			return nil, fmt.Errorf("unexpected request %s", req.URL.EscapedPath())
		}
	}

	c, err := client.New(baseURL, mock, client.WithRequestIDGenerator(func() string { return "bench" }))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })

	return c, &model.Attribute{Name: "HeapMemoryUsage", Parent: "java.lang:type=Memory"}
}
