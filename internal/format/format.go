// Package format renders jolokia CLI results as tables or JSON.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/watch"
)

// Format names an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Options configures a Formatter
type Options struct {
	Format Format
	Color  bool
}

// Formatter writes command results
type Formatter interface {
	Version(info *protocol.AgentInfo) error
	Topology(topology model.Topology) error
	MBean(mbean *model.MBean) error
	Value(raw json.RawMessage) error
	Sample(s watch.Sample) error
}

// New returns the formatter for options.Format writing to w
func New(w io.Writer, options Options) (Formatter, error) {
	switch options.Format {
	case FormatTable, "":
		return &tableFormatter{w: w, color: options.Color}, nil
	case FormatJSON:
		return &jsonFormatter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", options.Format)
	}
}
