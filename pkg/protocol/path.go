package protocol

import (
	"net/url"
	"strconv"
	"strings"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

// HistoryLimit bounds the values Jolokia keeps for an attribute or operation.
// Zero for both disables history for the target.
type HistoryLimit struct {
	// Count is the maximum number of entries kept
	Count int
	// Seconds is the maximum age of kept entries
	Seconds int
}

// Validate checks that both limits are non-negative
func (l HistoryLimit) Validate() error {
	if l.Count < 0 {
		return jerrors.ParameterTooSmall("count", l.Count, 0)
	}
	if l.Seconds < 0 {
		return jerrors.ParameterTooSmall("seconds", l.Seconds, 0)
	}
	return nil
}

// ParseBaseURL parses the agent URL and adds the mimeType query parameter
func ParseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, jerrors.MissingParameter("baseURL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, jerrors.InvalidParameter("baseURL", raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, jerrors.InvalidParameter("baseURL", raw, "scheme must be http or https")
	}
	if u.Host == "" {
		return nil, jerrors.InvalidParameter("baseURL", raw, "host is required")
	}

	q := u.Query()
	q.Set(MimeTypeParam, MimeTypeJSON)
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u, nil
}

// PathBuilder produces request URLs below an agent base URL
type PathBuilder struct {
	base *url.URL
}

// NewPathBuilder creates a PathBuilder for base, which should come from ParseBaseURL
func NewPathBuilder(base *url.URL) *PathBuilder {
	b := *base
	return &PathBuilder{base: &b}
}

// Base returns a copy of the base URL
func (b *PathBuilder) Base() *url.URL {
	u := *b.base
	return &u
}

// Build appends the escaped segments to the base path
func (b *PathBuilder) Build(segments ...string) *url.URL {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = EscapeSegment(s)
	}

	rawPath := strings.TrimRight(b.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")

	u := *b.base
	u.RawPath = rawPath
	// rawPath only contains escapes produced above
	u.Path, _ = url.PathUnescape(rawPath)
	return &u
}

// Version returns the URL of the version endpoint
func (b *PathBuilder) Version() *url.URL {
	return b.Build(EndpointVersion)
}

// List returns the URL listing everything, one domain, or one MBean.
// An MBean name requires a domain.
func (b *PathBuilder) List(domain, mbean string) (*url.URL, error) {
	switch {
	case mbean != "" && domain == "":
		return nil, jerrors.InvalidParameter("mbean", mbean, "listing an MBean requires its domain")
	case mbean != "":
		return b.Build(EndpointList, domain, mbean), nil
	case domain != "":
		return b.Build(EndpointList, domain), nil
	default:
		return b.Build(EndpointList), nil
	}
}

// Read returns the URL reading attribute of the MBean named parent
func (b *PathBuilder) Read(parent, attribute string) *url.URL {
	return b.Build(EndpointRead, parent, attribute)
}

// Write returns the URL setting attribute of the MBean named parent to value
func (b *PathBuilder) Write(parent, attribute, value string) *url.URL {
	return b.Build(EndpointWrite, parent, attribute, argumentSegment(value))
}

// Exec returns the URL invoking operation on the MBean named parent
func (b *PathBuilder) Exec(parent, operation string, args ...string) *url.URL {
	segments := make([]string, 0, 3+len(args))
	segments = append(segments, EndpointExec, parent, operation)
	for _, a := range args {
		segments = append(segments, argumentSegment(a))
	}
	return b.Build(segments...)
}

// AttributeHistory returns the URL configuring history for an attribute
func (b *PathBuilder) AttributeHistory(parent, attribute string, limit HistoryLimit) *url.URL {
	return b.history(OpSetHistoryLimitForAttribute, parent, attribute, limit)
}

// OperationHistory returns the URL configuring history for an operation
func (b *PathBuilder) OperationHistory(parent, operation string, limit HistoryLimit) *url.URL {
	return b.history(OpSetHistoryLimitForOperation, parent, operation, limit)
}

func (b *PathBuilder) history(op, parent, name string, limit HistoryLimit) *url.URL {
	return b.Build(
		EndpointExec, ConfigMBean, op,
		parent, name,
		NullSentinel, NullSentinel,
		strconv.Itoa(limit.Count), strconv.Itoa(limit.Seconds),
	)
}

// ResetHistory returns the URL clearing all history entries
func (b *PathBuilder) ResetHistory() *url.URL {
	return b.Build(EndpointExec, ConfigMBean, OpResetHistoryEntries)
}

// argumentSegment maps the empty string to the agent's empty-string marker
func argumentSegment(v string) string {
	if v == "" {
		return EmptyStringSentinel
	}
	return v
}

var jolokiaEscaper = strings.NewReplacer("!", "!!", "/", "!/")

// EscapeSegment escapes one path segment. "!" and "/" get Jolokia's "!"
// escape, then every part between the remaining literal slashes is
// percent-escaped. ":" and "=" pass through unchanged.
func EscapeSegment(s string) string {
	parts := strings.Split(jolokiaEscaper.Replace(s), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
