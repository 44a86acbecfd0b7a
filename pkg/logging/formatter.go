package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NewFormatter returns the formatter registered under name: "text" or "json"
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return NewTextFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", name)
	}
}

// TextFormatter formats log entries as human-readable text
type TextFormatter struct {
	// TimestampFormat is the format for timestamps
	TimestampFormat string
	// DisableColors disables terminal colors
	DisableColors bool
	// DisableTimestamp disables timestamp output
	DisableTimestamp bool
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
	}
}

var levelColors = map[Level]string{
	DebugLevel: "\033[90m",
	InfoLevel:  "\033[34m",
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
}

// Format writes: timestamp [LEVEL] [request] component/operation: message | k=v ...
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer

	if !f.DisableTimestamp {
		buf.WriteString(entry.Timestamp.Format(f.TimestampFormat))
		buf.WriteByte(' ')
	}

	level := "[" + entry.Level.String() + "]"
	if color, ok := levelColors[entry.Level]; ok && !f.DisableColors {
		level = color + level + "\033[0m"
	}
	buf.WriteString(level)
	buf.WriteByte(' ')

	if entry.RequestID != "" {
		fmt.Fprintf(&buf, "[%s] ", entry.RequestID)
	}

	if entry.Component != "" {
		buf.WriteString(entry.Component)
		if entry.Operation != "" {
			buf.WriteByte('/')
			buf.WriteString(entry.Operation)
		}
		buf.WriteString(": ")
	}

	buf.WriteString(entry.Message)

	if pairs := f.pairs(entry); len(pairs) > 0 {
		buf.WriteString(" | ")
		buf.WriteString(strings.Join(pairs, " "))
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// pairs renders the fields not already shown in the header, sorted by key
func (f *TextFormatter) pairs(entry *Entry) []string {
	pairs := make([]string, 0, len(entry.Fields))
	for k, v := range entry.Fields {
		switch {
		case k == requestIDField:
			continue
		case k == "component" && entry.Component != "":
			continue
		case k == "operation" && entry.Component != "" && entry.Operation != "":
			continue
		}

		var value string
		switch val := v.(type) {
		case error:
			value = val.Error()
		case string:
			value = val
		case time.Duration:
			value = val.String()
		default:
			value = fmt.Sprintf("%v", v)
		}
		if strings.ContainsAny(value, " \t\"") {
			value = fmt.Sprintf("%q", value)
		}
		pairs = append(pairs, k+"="+value)
	}
	sort.Strings(pairs)
	return pairs
}

// JSONFormatter formats log entries as one JSON object per line
type JSONFormatter struct {
	// TimestampFormat is the format for timestamps
	TimestampFormat string
	// DisableTimestamp disables timestamp output
	DisableTimestamp bool
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		switch val := v.(type) {
		case error:
			data[k] = val.Error()
		case time.Duration:
			data[k] = val.String()
		default:
			data[k] = v
		}
	}

	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if !f.DisableTimestamp {
		data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(out, '\n'), nil
}
