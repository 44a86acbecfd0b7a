package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

const memoryMBeanJSON = `{
  "desc": "Information on the management interface of the MBean",
  "class": "sun.management.MemoryImpl",
  "attr": {
    "HeapMemoryUsage": {"desc": "HeapMemoryUsage", "type": "javax.management.openmbean.CompositeData", "rw": false},
    "Verbose": {"desc": "Verbose", "type": "boolean", "rw": true},
    "ObjectName": {"desc": "ObjectName"}
  },
  "op": {
    "gc": {"desc": "gc", "args": [], "ret": "void"},
    "foo": [
      {"desc": "foo", "args": [], "ret": "void"},
      {"desc": "foo", "args": [{"name": "p1", "desc": "", "type": "int"}], "ret": "void"}
    ],
    "dump": {"desc": "dump", "args": [{"name": "file", "desc": "target"}, {"name": "live", "desc": "", "type": "boolean"}]}
  }
}`

func decodeMemory(t *testing.T) *MBean {
	t.Helper()
	var m MBean
	require.NoError(t, json.Unmarshal([]byte(memoryMBeanJSON), &m))
	return &m
}

func TestDecodeMBean(t *testing.T) {
	m := decodeMemory(t)

	assert.Equal(t, "sun.management.MemoryImpl", m.Class)
	assert.Len(t, m.Attributes, 3)
	assert.Equal(t, "javax.management.openmbean.CompositeData", m.Attributes["HeapMemoryUsage"].Type)
	assert.True(t, m.Attributes["Verbose"].Writable)
	assert.False(t, m.Attributes["HeapMemoryUsage"].Writable)

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, DefaultAttributeType, m.Attributes["ObjectName"].Type)
		assert.False(t, m.Attributes["ObjectName"].Writable)

		dump := m.Operations["dump"]
		require.NotNil(t, dump)
		assert.Equal(t, DefaultReturnType, dump.ReturnType)
		assert.Equal(t, DefaultArgumentType, dump.Arguments[0].Type)
		assert.Equal(t, "boolean", dump.Arguments[1].Type)
	})

	t.Run("argument order", func(t *testing.T) {
		dump := m.Operations["dump"]
		require.Len(t, dump.Arguments, 2)
		assert.Equal(t, "file", dump.Arguments[0].Name)
		assert.Equal(t, "live", dump.Arguments[1].Name)
	})

	t.Run("overloaded operation skipped", func(t *testing.T) {
		assert.NotContains(t, m.Operations, "foo")
		assert.Contains(t, m.Operations, "gc")
		assert.Len(t, m.Operations["gc"].Arguments, 0)
	})
}

func TestUpdatePropagatesParent(t *testing.T) {
	m := decodeMemory(t)
	m.Update("java.lang", "type=Memory")

	assert.Equal(t, "java.lang:type=Memory", m.FullyQualifiedName())
	for key, attr := range m.Attributes {
		assert.Equal(t, key, attr.Name)
		assert.Equal(t, m.FullyQualifiedName(), attr.Parent)
	}
	for key, op := range m.Operations {
		assert.Equal(t, key, op.Name)
		assert.Equal(t, m.FullyQualifiedName(), op.Parent)
	}

	m.Update("java.nio", "type=BufferPool,name=direct")
	assert.Equal(t, "java.nio:type=BufferPool,name=direct", m.Attributes["Verbose"].Parent)
	assert.Equal(t, "java.nio:type=BufferPool,name=direct", m.Operations["gc"].Parent)
}

func TestUpdateIsIdempotent(t *testing.T) {
	once := decodeMemory(t)
	once.Update("java.lang", "type=Memory")

	twice := decodeMemory(t)
	twice.Update("java.lang", "type=Memory")
	twice.Update("java.lang", "type=Memory")

	assert.Equal(t, once, twice)
}

func TestUpdateEmptyMBean(t *testing.T) {
	m := &MBean{Attributes: map[string]*Attribute{"nil": nil}}
	m.Update("d", "n")
	assert.NotNil(t, m.Operations)
	assert.Empty(t, m.Attributes)
}

func TestDecodeTopology(t *testing.T) {
	body := `{
	  "java.lang": {
	    "type=Memory": ` + memoryMBeanJSON + `,
	    "type=Runtime": {"desc": "runtime", "attr": {"Uptime": {"type": "long", "rw": false, "desc": "Uptime"}}}
	  },
	  "JMImplementation": {
	    "type=MBeanServerDelegate": {"desc": "delegate", "attr": {}, "op": {}}
	  }
	}`

	var topo Topology
	require.NoError(t, json.Unmarshal([]byte(body), &topo))
	topo.Update()

	assert.Equal(t, 3, topo.Count())
	runtime := topo["java.lang"]["type=Runtime"]
	require.NotNil(t, runtime)
	assert.Equal(t, "java.lang", runtime.Domain)
	assert.Equal(t, "type=Runtime", runtime.Name)
	assert.Equal(t, "java.lang:type=Runtime", runtime.Attributes["Uptime"].Parent)
	assert.NotNil(t, runtime.Operations)
}

func TestDecodeRejectsMalformedOperation(t *testing.T) {
	var m MBean
	err := json.Unmarshal([]byte(`{"op": {"bad": {"args": "nope"}}}`), &m)
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	m := decodeMemory(t)
	m.Update("java.lang", "type=Memory")

	attr, err := m.Attribute("Verbose")
	require.NoError(t, err)
	assert.Equal(t, "rw", attr.Access())

	_, err = m.Attribute("Missing")
	assert.True(t, jerrors.IsCode(err, jerrors.CodeAttributeNotFound))

	_, err = m.Operation("foo")
	assert.True(t, jerrors.IsCode(err, jerrors.CodeOperationNotFound))

	assert.Equal(t, []string{"HeapMemoryUsage", "ObjectName", "Verbose"}, m.AttributeNames())
	assert.Equal(t, []string{"dump", "gc"}, m.OperationNames())
	assert.Equal(t, "dump(java.lang.String, boolean) : java.lang.String", m.Operations["dump"].Signature())
}

func TestParseFQN(t *testing.T) {
	domain, name, err := ParseFQN("java.lang:type=GarbageCollector,name=G1 Young Generation")
	require.NoError(t, err)
	assert.Equal(t, "java.lang", domain)
	assert.Equal(t, "type=GarbageCollector,name=G1 Young Generation", name)

	for _, bad := range []string{"", "java.lang", ":type=Memory", "java.lang:"} {
		_, _, err := ParseFQN(bad)
		assert.Error(t, err, bad)
	}
}

func BenchmarkDecodeMBean(b *testing.B) {
	data := []byte(memoryMBeanJSON)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var m MBean
		if err := json.Unmarshal(data, &m); err != nil {
			b.Fatal(err)
		}
		m.Update("java.lang", "type=Memory")
	}
}
