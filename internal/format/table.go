package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/watch"
)

// maxCell truncates long values in table cells
const maxCell = 100

type tableFormatter struct {
	w     io.Writer
	color bool
}

func (f *tableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.w)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *tableFormatter) paint(c text.Color, s string) string {
	if !f.color {
		return s
	}
	return c.Sprint(s)
}

func (f *tableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = f.paint(text.FgHiCyan, n)
	}
	return row
}

func (f *tableFormatter) Version(info *protocol.AgentInfo) error {
	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))
	t.AppendRow(table.Row{"agent", info.Agent})
	t.AppendRow(table.Row{"protocol", info.Protocol})
	for _, k := range sortedKeys(info.Info) {
		t.AppendRow(table.Row{k, truncate(fmt.Sprintf("%v", info.Info[k]))})
	}
	t.Render()
	return nil
}

func (f *tableFormatter) Topology(topology model.Topology) error {
	if topology.Count() == 0 {
		_, err := fmt.Fprintln(f.w, f.paint(text.FgYellow, "No MBeans found"))
		return err
	}

	t := f.createTable()
	t.AppendHeader(f.header("DOMAIN", "MBEAN", "ATTRIBUTES", "OPERATIONS"))
	domains := make([]string, 0, len(topology))
	for d := range topology {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		names := make([]string, 0, len(topology[d]))
		for n := range topology[d] {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			m := topology[d][n]
			t.AppendRow(table.Row{d, n, len(m.Attributes), len(m.Operations)})
		}
	}
	t.AppendFooter(table.Row{"", "Total", topology.Count(), ""})
	t.Render()
	return nil
}

func (f *tableFormatter) MBean(m *model.MBean) error {
	if _, err := fmt.Fprintf(f.w, "%s\n%s\n", f.paint(text.FgHiWhite, m.FullyQualifiedName()), m.Description); err != nil {
		return err
	}

	if len(m.Attributes) > 0 {
		t := f.createTable()
		t.SetTitle("Attributes")
		t.AppendHeader(f.header("NAME", "TYPE", "ACCESS", "DESCRIPTION"))
		for _, name := range m.AttributeNames() {
			a := m.Attributes[name]
			t.AppendRow(table.Row{name, a.Type, a.Access(), truncate(a.Description)})
		}
		t.Render()
	}

	if len(m.Operations) > 0 {
		t := f.createTable()
		t.SetTitle("Operations")
		t.AppendHeader(f.header("SIGNATURE", "DESCRIPTION"))
		for _, name := range m.OperationNames() {
			op := m.Operations[name]
			t.AppendRow(table.Row{op.Signature(), truncate(op.Description)})
		}
		t.Render()
	}
	return nil
}

func (f *tableFormatter) Value(raw json.RawMessage) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}

	switch v := decoded.(type) {
	case map[string]interface{}:
		t := f.createTable()
		t.AppendHeader(f.header("KEY", "VALUE"))
		for _, k := range sortedKeys(v) {
			t.AppendRow(table.Row{k, truncate(scalar(v[k]))})
		}
		t.Render()
	case []interface{}:
		for i, item := range v {
			if _, err := fmt.Fprintf(f.w, "  %d. %s\n", i+1, scalar(item)); err != nil {
				return err
			}
		}
	default:
		_, err := fmt.Fprintln(f.w, scalar(v))
		return err
	}
	return nil
}

func (f *tableFormatter) Sample(s watch.Sample) error {
	target := s.Attribute.Parent + " " + s.Attribute.Name
	ts := s.Time.Format(time.RFC3339)
	if s.Err != nil {
		_, err := fmt.Fprintf(f.w, "%s  %s  %s\n", ts, target, f.paint(text.FgRed, "error: "+s.Err.Error()))
		return err
	}
	_, err := fmt.Fprintf(f.w, "%s  %s  %s\n", ts, target, compact(s.Value))
	return err
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// scalar renders nested values as compact JSON and everything else with %v
func scalar(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	case nil:
		return "null"
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxCell {
		return s[:maxCell-3] + "..."
	}
	return s
}
