package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Prometheus configuration
	MetricsPath string // HTTP path for metrics endpoint (default: /metrics)
	Addr        string // Listen address for the metrics server (default: :9090)

	// Metric options
	Namespace        string    // Prometheus namespace (default: jolokia)
	Subsystem        string    // Prometheus subsystem
	HistogramBuckets []float64 // Custom histogram buckets for latency, in seconds

	// Labels to add to all metrics
	ConstLabels prometheus.Labels

	// Registry receives the collectors; a private registry is created when nil
	Registry *prometheus.Registry
}

// MetricsProvider records client and agent metrics
type MetricsProvider interface {
	// RecordRequest records one agent request by endpoint and outcome
	RecordRequest(ctx context.Context, operation, outcome string, duration time.Duration)
	// RecordProtocolStatus counts envelope statuses returned by the agent
	RecordProtocolStatus(ctx context.Context, operation string, status int)
	// RecordAttributeValue exports a numeric MBean attribute value
	RecordAttributeValue(mbean, attribute, path string, value float64)
	// RecordRegistrySize records the number of MBeans in the registry
	RecordRegistrySize(size int)

	// Custom metrics
	RecordGauge(name string, value float64, labels prometheus.Labels)
	RecordCounter(name string, labels prometheus.Labels)

	// Management
	Handler() http.Handler
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Request outcomes
const (
	OutcomeOK             = "ok"
	OutcomeProtocolError  = "protocol_error"
	OutcomeMalformed      = "malformed"
	OutcomeTransportError = "transport_error"
	OutcomeTimeout        = "timeout"
	OutcomeCancelled      = "cancelled"
	OutcomeCircuitOpen    = "circuit_open"
	OutcomeError          = "error"
)

// Outcome classifies err into a metric label
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var (
		pErr *jerrors.ProtocolStatusError
		mErr *jerrors.MalformedResponseError
	)
	switch {
	case errors.As(err, &pErr):
		return OutcomeProtocolError
	case errors.As(err, &mErr):
		return OutcomeMalformed
	case jerrors.IsCode(err, jerrors.CodeCircuitOpen):
		return OutcomeCircuitOpen
	case errors.Is(err, context.Canceled), jerrors.IsCategory(err, jerrors.CategoryCancelled):
		return OutcomeCancelled
	case errors.Is(err, context.DeadlineExceeded), jerrors.IsCategory(err, jerrors.CategoryTimeout):
		return OutcomeTimeout
	case jerrors.IsCategory(err, jerrors.CategoryTransport), jerrors.IsCategory(err, jerrors.CategoryAuth):
		return OutcomeTransportError
	default:
		return OutcomeError
	}
}

// PrometheusMetricsProvider implements MetricsProvider using Prometheus
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	protocolStatus  *prometheus.CounterVec
	attributeValue  *prometheus.GaugeVec
	registrySize    prometheus.Gauge

	// Custom metrics registry
	customMetrics map[string]prometheus.Collector
	mu            sync.Mutex

	server   *http.Server
	listener net.Listener
}

// NewMetricsProvider creates a new Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	if config.Namespace == "" {
		config.Namespace = "jolokia"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.Addr == "" {
		config.Addr = ":9090"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	constLabels := prometheus.Labels{}
	for k, v := range config.ConstLabels {
		constLabels[k] = v
	}
	if config.ServiceName != "" {
		constLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		constLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		constLabels["environment"] = config.Environment
	}
	config.ConstLabels = constLabels

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	provider := &PrometheusMetricsProvider{
		config:        config,
		registry:      registry,
		customMetrics: make(map[string]prometheus.Collector),
	}
	provider.initializeMetrics()

	if err := provider.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return provider, nil
}

// initializeMetrics creates all metric collectors
func (p *PrometheusMetricsProvider) initializeMetrics() {
	p.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Duration of Jolokia agent requests in seconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"operation", "outcome"},
	)

	p.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of Jolokia agent requests",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"operation", "outcome"},
	)

	p.protocolStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "protocol_status_total",
			Help:        "Envelope statuses returned by the agent",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"operation", "status"},
	)

	p.attributeValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "attribute_value",
			Help:        "Last polled value of a numeric MBean attribute",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"mbean", "attribute", "path"},
	)

	p.registrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "registry_mbeans",
			Help:        "Number of MBeans held in the client registry",
			ConstLabels: p.config.ConstLabels,
		},
	)
}

// registerMetrics registers all metrics with the registry
func (p *PrometheusMetricsProvider) registerMetrics() error {
	collectors := []prometheus.Collector{
		p.requestDuration,
		p.requestTotal,
		p.protocolStatus,
		p.attributeValue,
		p.registrySize,
	}

	for _, collector := range collectors {
		if err := p.registry.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}

	return nil
}

// Registry returns the registry the collectors are registered with
func (p *PrometheusMetricsProvider) Registry() *prometheus.Registry {
	return p.registry
}

// RecordRequest records an agent request
func (p *PrometheusMetricsProvider) RecordRequest(_ context.Context, operation, outcome string, duration time.Duration) {
	p.requestDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	p.requestTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordProtocolStatus counts an envelope status
func (p *PrometheusMetricsProvider) RecordProtocolStatus(_ context.Context, operation string, status int) {
	p.protocolStatus.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// RecordAttributeValue sets the gauge for a polled attribute
func (p *PrometheusMetricsProvider) RecordAttributeValue(mbean, attribute, path string, value float64) {
	p.attributeValue.WithLabelValues(mbean, attribute, path).Set(value)
}

// RecordRegistrySize sets the registry size gauge
func (p *PrometheusMetricsProvider) RecordRegistrySize(size int) {
	p.registrySize.Set(float64(size))
}

// RecordGauge records a custom gauge metric
func (p *PrometheusMetricsProvider) RecordGauge(name string, value float64, labels prometheus.Labels) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := "gauge:" + name
	if existing, ok := p.customMetrics[key]; ok {
		if g, ok := existing.(*prometheus.GaugeVec); ok {
			g.With(labels).Set(value)
		}
		return
	}

	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   "custom",
			Name:        name,
			Help:        fmt.Sprintf("Custom gauge metric: %s", name),
			ConstLabels: p.config.ConstLabels,
		},
		labelKeys(labels),
	)
	if err := p.registry.Register(gauge); err != nil {
		return
	}
	p.customMetrics[key] = gauge
	gauge.With(labels).Set(value)
}

// RecordCounter records a custom counter metric
func (p *PrometheusMetricsProvider) RecordCounter(name string, labels prometheus.Labels) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := "counter:" + name
	if existing, ok := p.customMetrics[key]; ok {
		if c, ok := existing.(*prometheus.CounterVec); ok {
			c.With(labels).Inc()
		}
		return
	}

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   "custom",
			Name:        name,
			Help:        fmt.Sprintf("Custom counter metric: %s", name),
			ConstLabels: p.config.ConstLabels,
		},
		labelKeys(labels),
	)
	if err := p.registry.Register(counter); err != nil {
		return
	}
	p.customMetrics[key] = counter
	counter.With(labels).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Start starts the metrics HTTP server
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.server != nil {
		return errors.New("metrics server already started")
	}

	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, p.Handler())

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", p.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.config.Addr, err)
	}

	p.listener = listener
	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = p.server.Serve(listener)
	}()

	return nil
}

// Addr returns the address the metrics server listens on, or "" before Start
func (p *PrometheusMetricsProvider) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Shutdown gracefully shuts down the metrics server
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	server := p.server
	p.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

func labelKeys(labels prometheus.Labels) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
