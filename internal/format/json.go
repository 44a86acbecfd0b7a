package format

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/watch"
)

type jsonFormatter struct {
	w io.Writer
}

type sampleJSON struct {
	Time      time.Time       `json:"time"`
	MBean     string          `json:"mbean"`
	Attribute string          `json:"attribute"`
	Value     json.RawMessage `json:"value,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (f *jsonFormatter) encode(v interface{}, indent bool) error {
	enc := json.NewEncoder(f.w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func (f *jsonFormatter) Version(info *protocol.AgentInfo) error {
	return f.encode(info, true)
}

func (f *jsonFormatter) Topology(topology model.Topology) error {
	return f.encode(topology, true)
}

func (f *jsonFormatter) MBean(m *model.MBean) error {
	return f.encode(m, true)
}

func (f *jsonFormatter) Value(raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	return f.encode(raw, true)
}

// Sample writes one JSON object per line
func (f *jsonFormatter) Sample(s watch.Sample) error {
	out := sampleJSON{
		Time:      s.Time.UTC(),
		MBean:     s.Attribute.Parent,
		Attribute: s.Attribute.Name,
		Value:     s.Value,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
		out.Value = nil
	}
	return f.encode(out, false)
}
