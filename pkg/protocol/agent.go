package protocol

import (
	"net"
	"strconv"
)

// Endpoint kinds, used as the first path segment and as the operation label
// in logs and metrics.
const (
	EndpointVersion = "version"
	EndpointList    = "list"
	EndpointRead    = "read"
	EndpointWrite   = "write"
	EndpointExec    = "exec"
)

// Jolokia's own configuration MBean and the operations used for history.
const (
	ConfigMBean                   = "jolokia:type=Config"
	OpSetHistoryLimitForAttribute = "setHistoryLimitForAttribute"
	OpSetHistoryLimitForOperation = "setHistoryLimitForOperation"
	OpResetHistoryEntries         = "resetHistoryEntries"
)

// Request conventions.
const (
	DefaultAgentPath    = "/jolokia"
	MimeTypeParam       = "mimeType"
	MimeTypeJSON        = "application/json"
	NullSentinel        = "[null]"
	EmptyStringSentinel = `""`
)

// AgentInfo is the value of the version endpoint
type AgentInfo struct {
	Protocol string                 `json:"protocol"`
	Agent    string                 `json:"agent"`
	Info     map[string]interface{} `json:"info,omitempty"`
}

// AgentURL returns the conventional agent URL for host and port.
// An empty scheme defaults to http.
func AgentURL(scheme, host string, port int) string {
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + DefaultAgentPath
}
