// Package watch polls MBean attributes on a fixed interval.
//
// A Poller reads every target once per tick, concurrently, and hands the
// results to a callback in target order. Read failures are delivered in the
// Sample rather than stopping the poller. Run blocks until its context is
// done and leaves no goroutines behind.
package watch

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/observability"
)

// DefaultConcurrency is the number of reads in flight per tick
const DefaultConcurrency = 4

// Reader reads one attribute. *client.Client satisfies it.
type Reader interface {
	ReadRaw(ctx context.Context, attr *model.Attribute) (json.RawMessage, error)
}

// ReaderFunc adapts a function to Reader
type ReaderFunc func(ctx context.Context, attr *model.Attribute) (json.RawMessage, error)

// ReadRaw calls f
func (f ReaderFunc) ReadRaw(ctx context.Context, attr *model.Attribute) (json.RawMessage, error) {
	return f(ctx, attr)
}

// Sample is the result of reading one attribute on one tick
type Sample struct {
	Attribute *model.Attribute
	Value     json.RawMessage
	Err       error
	Time      time.Time
}

// Poller reads a set of attributes periodically
type Poller struct {
	reader      Reader
	concurrency int
	logger      logging.Logger
	metrics     observability.MetricsProvider
	now         func() time.Time
}

// Option configures a Poller
type Option func(*Poller)

// WithConcurrency limits the reads in flight per tick. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics exports numeric sample values through metrics
func WithMetrics(metrics observability.MetricsProvider) Option {
	return func(p *Poller) {
		p.metrics = metrics
	}
}

// WithClock replaces time.Now for sample timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Poller reading through r
func New(r Reader, opts ...Option) *Poller {
	p := &Poller{
		reader:      r,
		concurrency: DefaultConcurrency,
		logger:      logging.NewNopLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithFields(logging.String("component", "watch"))
	return p
}

// Run polls targets immediately and then every interval, calling fn with
// one Sample per target in target order. It returns ctx.Err() once ctx is
// done. A tick interrupted by cancellation is not delivered.
func (p *Poller) Run(ctx context.Context, targets []*model.Attribute, interval time.Duration, fn func(Sample)) error {
	if err := validate(targets, interval, fn); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		samples := p.Poll(ctx, targets)
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, s := range samples {
			fn(s)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll reads every target once and returns the samples in target order
func (p *Poller) Poll(ctx context.Context, targets []*model.Attribute) []Sample {
	samples := make([]Sample, len(targets))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, attr := range targets {
		g.Go(func() error {
			value, err := p.reader.ReadRaw(ctx, attr)
			samples[i] = Sample{Attribute: attr, Value: value, Err: err, Time: p.now()}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, s := range samples {
		if s.Err != nil {
			failed++
			continue
		}
		p.export(s)
	}
	if failed > 0 && ctx.Err() == nil {
		p.logger.WithContext(ctx).Warn("poll completed with errors",
			logging.Int("targets", len(targets)),
			logging.Int("failed", failed),
		)
	}
	return samples
}

// export records numeric values, and the numeric fields of object values,
// as attribute gauges
func (p *Poller) export(s Sample) {
	if p.metrics == nil {
		return
	}
	for path, v := range NumericValues(s.Value) {
		p.metrics.RecordAttributeValue(s.Attribute.Parent, s.Attribute.Name, path, v)
	}
}

// NumericValues extracts numbers from a value. A plain number is returned
// under the empty path; an object yields one entry per numeric field.
// Anything else, null included, yields nothing.
func NumericValues(raw json.RawMessage) map[string]float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return map[string]float64{"": number}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	out := make(map[string]float64)
	for k, v := range fields {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}

// Paths returns the keys of values, sorted
func Paths(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func validate(targets []*model.Attribute, interval time.Duration, fn func(Sample)) error {
	if len(targets) == 0 {
		return jerrors.MissingParameter("targets")
	}
	for _, attr := range targets {
		if attr == nil || attr.Parent == "" || attr.Name == "" {
			return jerrors.InvalidParameter("targets", attr, "attribute needs a parent MBean and a name")
		}
	}
	if interval <= 0 {
		return jerrors.ParameterTooSmall("interval", interval, "1ns")
	}
	if fn == nil {
		return jerrors.MissingParameter("fn")
	}
	return nil
}
