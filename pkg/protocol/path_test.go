package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

func newTestBuilder(t *testing.T, raw string) *PathBuilder {
	t.Helper()
	base, err := ParseBaseURL(raw)
	require.NoError(t, err)
	return NewPathBuilder(base)
}

func TestParseBaseURL(t *testing.T) {
	u, err := ParseBaseURL("http://localhost:8778/jolokia")
	require.NoError(t, err)
	assert.Equal(t, "application/json", u.Query().Get(MimeTypeParam))

	u, err = ParseBaseURL("https://host/jolokia/?mimeType=text/plain&maxDepth=3")
	require.NoError(t, err)
	assert.Equal(t, "application/json", u.Query().Get(MimeTypeParam))
	assert.Equal(t, "3", u.Query().Get("maxDepth"))

	for _, bad := range []string{"", "localhost:8778/jolokia", "ftp://host/jolokia", "http:///jolokia", "http://[::1"} {
		_, err := ParseBaseURL(bad)
		assert.Error(t, err, bad)
		assert.True(t, jerrors.IsCategory(err, jerrors.CategoryValidation), bad)
	}
}

func TestPathBuilderEndpoints(t *testing.T) {
	b := newTestBuilder(t, "http://localhost:8778/jolokia/")
	const query = "?mimeType=application%2Fjson"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"version", b.Version().String(), "http://localhost:8778/jolokia/version" + query},
		{"read", b.Read("java.lang:type=Memory", "HeapMemoryUsage").String(),
			"http://localhost:8778/jolokia/read/java.lang:type=Memory/HeapMemoryUsage" + query},
		{"write", b.Write("java.lang:type=Memory", "Verbose", "true").String(),
			"http://localhost:8778/jolokia/write/java.lang:type=Memory/Verbose/true" + query},
		{"write empty", b.Write("app:type=Cfg", "Name", "").String(),
			"http://localhost:8778/jolokia/write/app:type=Cfg/Name/%22%22" + query},
		{"exec no args", b.Exec("java.lang:type=Memory", "gc").String(),
			"http://localhost:8778/jolokia/exec/java.lang:type=Memory/gc" + query},
		{"exec args", b.Exec("java.lang:type=Threading", "getThreadInfo", "1", "5").String(),
			"http://localhost:8778/jolokia/exec/java.lang:type=Threading/getThreadInfo/1/5" + query},
		{"exec escaped", b.Exec("java.lang:type=GarbageCollector,name=PS Scavenge", "op").String(),
			"http://localhost:8778/jolokia/exec/java.lang:type=GarbageCollector%2Cname=PS%20Scavenge/op" + query},
		{"attribute history", b.AttributeHistory("java.lang:type=Memory", "HeapMemoryUsage", HistoryLimit{Count: 10, Seconds: 60}).String(),
			"http://localhost:8778/jolokia/exec/jolokia:type=Config/setHistoryLimitForAttribute/java.lang:type=Memory/HeapMemoryUsage/%5Bnull%5D/%5Bnull%5D/10/60" + query},
		{"operation history", b.OperationHistory("java.lang:type=Memory", "gc", HistoryLimit{}).String(),
			"http://localhost:8778/jolokia/exec/jolokia:type=Config/setHistoryLimitForOperation/java.lang:type=Memory/gc/%5Bnull%5D/%5Bnull%5D/0/0" + query},
		{"reset history", b.ResetHistory().String(),
			"http://localhost:8778/jolokia/exec/jolokia:type=Config/resetHistoryEntries" + query},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestPathBuilderList(t *testing.T) {
	b := newTestBuilder(t, "http://localhost:8778/jolokia")

	u, err := b.List("", "")
	require.NoError(t, err)
	assert.Equal(t, "/jolokia/list", u.Path)

	u, err = b.List("java.lang", "")
	require.NoError(t, err)
	assert.Equal(t, "/jolokia/list/java.lang", u.Path)

	u, err = b.List("java.lang", "type=Memory")
	require.NoError(t, err)
	assert.Equal(t, "/jolokia/list/java.lang/type=Memory", u.Path)

	_, err = b.List("", "type=Memory")
	require.Error(t, err)
	assert.True(t, jerrors.IsCode(err, jerrors.CodeInvalidParameter))
}

func TestEscapeSegment(t *testing.T) {
	tests := map[string]string{
		"java.lang:type=Memory": "java.lang:type=Memory",
		"a/b":                   "a%21/b",
		"wow!":                  "wow%21%21",
		"with space":            "with%20space",
		"a,b;c?d":               "a%2Cb%3Bc%3Fd",
		"[null]":                "%5Bnull%5D",
	}
	for in, want := range tests {
		assert.Equal(t, want, EscapeSegment(in), in)
	}
}

func TestBuildKeepsBaseUntouched(t *testing.T) {
	b := newTestBuilder(t, "http://localhost:8778/jolokia")
	_ = b.Read("java.lang:type=Memory", "HeapMemoryUsage")
	assert.Equal(t, "/jolokia", b.Base().Path)
	assert.Equal(t, "/jolokia/version", b.Version().Path)
}

func TestHistoryLimitValidate(t *testing.T) {
	assert.NoError(t, HistoryLimit{}.Validate())
	assert.NoError(t, HistoryLimit{Count: 5, Seconds: 0}.Validate())

	err := HistoryLimit{Count: -1}.Validate()
	require.Error(t, err)
	assert.True(t, jerrors.IsCode(err, jerrors.CodeParameterTooSmall))

	err = HistoryLimit{Seconds: -3}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seconds")
}

func TestAgentURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8778/jolokia", AgentURL("", "localhost", 8778))
	assert.Equal(t, "https://[::1]:8443/jolokia", AgentURL("https", "::1", 8443))
}
