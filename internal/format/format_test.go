package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/watch"
)

func memoryMBean() *model.MBean {
	m := &model.MBean{
		Description: "Memory",
		Attributes: map[string]*model.Attribute{
			"HeapMemoryUsage": {Description: "heap", Type: "javax.management.openmbean.CompositeData"},
			"Verbose":         {Description: "verbose", Type: "boolean", Writable: true},
		},
		Operations: map[string]*model.Operation{
			"gc": {Description: "run gc", ReturnType: "void"},
		},
	}
	m.Update("java.lang", "type=Memory")
	return m
}

func render(t *testing.T, format Format, fn func(Formatter) error) string {
	t.Helper()
	var buf bytes.Buffer
	f, err := New(&buf, Options{Format: format})
	require.NoError(t, err)
	require.NoError(t, fn(f))
	return buf.String()
}

func TestNewUnsupported(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		out := render(t, FormatTable, func(f Formatter) error {
			return f.Version(&protocol.AgentInfo{Agent: "1.3.7", Protocol: "7.2", Info: map[string]interface{}{"product": "tomcat"}})
		})
		assert.Contains(t, out, "1.3.7")
		assert.Contains(t, out, "7.2")
		assert.Contains(t, out, "tomcat")
	})

	t.Run("topology", func(t *testing.T) {
		out := render(t, FormatTable, func(f Formatter) error {
			return f.Topology(model.Topology{"java.lang": {"type=Memory": memoryMBean()}})
		})
		assert.Contains(t, out, "java.lang")
		assert.Contains(t, out, "type=Memory")
		assert.Contains(t, out, "TOTAL")
	})

	t.Run("empty topology", func(t *testing.T) {
		out := render(t, FormatTable, func(f Formatter) error { return f.Topology(model.Topology{}) })
		assert.Equal(t, "No MBeans found\n", out)
	})

	t.Run("mbean", func(t *testing.T) {
		out := render(t, FormatTable, func(f Formatter) error { return f.MBean(memoryMBean()) })
		assert.Contains(t, out, "java.lang:type=Memory")
		assert.Contains(t, out, "HeapMemoryUsage")
		assert.Contains(t, out, "rw")
		assert.Contains(t, out, "gc() : void")
		assert.Less(t, strings.Index(out, "HeapMemoryUsage"), strings.Index(out, "Verbose"))
	})

	t.Run("object value", func(t *testing.T) {
		out := render(t, FormatTable, func(f Formatter) error {
			return f.Value(json.RawMessage(`{"used":20,"max":1073741824,"nested":{"a":1}}`))
		})
		assert.Contains(t, out, "1073741824")
		assert.Contains(t, out, `{"a":1}`)
	})

	t.Run("scalar and array values", func(t *testing.T) {
		assert.Equal(t, "42\n", render(t, FormatTable, func(f Formatter) error { return f.Value(json.RawMessage(`42`)) }))
		assert.Equal(t, "null\n", render(t, FormatTable, func(f Formatter) error { return f.Value(json.RawMessage(`null`)) }))
		assert.Equal(t, "  1. a\n  2. b\n", render(t, FormatTable, func(f Formatter) error { return f.Value(json.RawMessage(`["a","b"]`)) }))
	})

	t.Run("sample", func(t *testing.T) {
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		attr := &model.Attribute{Name: "HeapMemoryUsage", Parent: "java.lang:type=Memory"}

		out := render(t, FormatTable, func(f Formatter) error {
			return f.Sample(watch.Sample{Attribute: attr, Value: json.RawMessage(`{ "used": 20 }`), Time: ts})
		})
		assert.Equal(t, "2024-01-02T03:04:05Z  java.lang:type=Memory HeapMemoryUsage  {\"used\":20}\n", out)

		out = render(t, FormatTable, func(f Formatter) error {
			return f.Sample(watch.Sample{Attribute: attr, Err: errors.New("boom"), Time: ts})
		})
		assert.Contains(t, out, "error: boom")
	})
}

func TestJSONFormatter(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		out := render(t, FormatJSON, func(f Formatter) error { return f.Value(json.RawMessage(`{"used":20}`)) })
		assert.JSONEq(t, `{"used":20}`, out)
	})

	t.Run("mbean", func(t *testing.T) {
		out := render(t, FormatJSON, func(f Formatter) error { return f.MBean(memoryMBean()) })
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Contains(t, decoded, "attr")
		assert.Contains(t, decoded, "op")
	})

	t.Run("samples are one line each", func(t *testing.T) {
		attr := &model.Attribute{Name: "Uptime", Parent: "java.lang:type=Runtime"}
		ts := time.Unix(1700000000, 0)
		out := render(t, FormatJSON, func(f Formatter) error {
			if err := f.Sample(watch.Sample{Attribute: attr, Value: json.RawMessage(`123`), Time: ts}); err != nil {
				return err
			}
			return f.Sample(watch.Sample{Attribute: attr, Err: errors.New("down"), Time: ts})
		})

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"time":"2023-11-14T22:13:20Z","mbean":"java.lang:type=Runtime","attribute":"Uptime","value":123}`, lines[0])
		assert.JSONEq(t, `{"time":"2023-11-14T22:13:20Z","mbean":"java.lang:type=Runtime","attribute":"Uptime","error":"down"}`, lines[1])
	})
}
