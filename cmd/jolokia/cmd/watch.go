package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/observability"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/watch"
)

type watchOptions struct {
	interval    time.Duration
	count       int
	concurrency int
	metricsAddr string
}

func newWatchCmd(a *app) *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch <domain> <mbean> <attribute>...",
		Short: "Poll attributes on an interval",
		Long: `Reads the given attributes of one MBean immediately and then every
--interval until interrupted, or until --count polls have completed.
With --metrics-addr, numeric values and request metrics are served in
Prometheus format at /metrics.`,
		Example: `  jolokia watch java.lang type=Memory HeapMemoryUsage NonHeapMemoryUsage --interval 5s
  jolokia watch java.lang type=Threading ThreadCount --metrics-addr :9090`,
		Args: usageArgs(cobra.MinimumNArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.interval <= 0 {
				return &usageError{err: errors.New("--interval must be positive")}
			}
			return a.runWatch(cmd, args[0], args[1], args[2:], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 5*time.Second, "time between polls")
	cmd.Flags().IntVar(&opts.count, "count", 0, "stop after this many polls (0 polls until interrupted)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", watch.DefaultConcurrency, "attribute reads in flight per poll")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, domain, name string, attributes []string, opts watchOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		metrics *observability.PrometheusMetricsProvider
		extra   []transport.Middleware
	)
	if opts.metricsAddr != "" {
		var err error
		metrics, err = observability.NewMetricsProvider(observability.MetricsConfig{
			ServiceName:    "jolokia-cli",
			ServiceVersion: a.version,
			Addr:           opts.metricsAddr,
		})
		if err != nil {
			return err
		}
		mw, err := observability.NewObservabilityMiddleware(observability.ObservabilityConfig{
			EnableMetrics: true,
			Metrics:       metrics,
			Logger:        a.logger,
		})
		if err != nil {
			return err
		}
		extra = append(extra, mw)
	}

	c, err := a.newClient(extra...)
	if err != nil {
		return err
	}
	defer c.Close()

	m, err := a.loadMBean(cmd, c, domain, name)
	if err != nil {
		return err
	}
	targets, err := watchTargets(m, attributes)
	if err != nil {
		return err
	}

	pollerOpts := []watch.Option{
		watch.WithConcurrency(opts.concurrency),
		watch.WithLogger(a.logger),
	}
	if metrics != nil {
		metrics.RecordRegistrySize(c.Registry().Len())
		if err := metrics.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			_ = metrics.Shutdown(shutdownCtx)
		}()
		a.logger.Info("serving metrics", logging.String("addr", metrics.Addr()))
		pollerOpts = append(pollerOpts, watch.WithMetrics(metrics))
	}

	out, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	delivered := 0
	var writeErr error
	err = watch.New(c, pollerOpts...).Run(ctx, targets, opts.interval, func(s watch.Sample) {
		if err := out.Sample(s); err != nil && writeErr == nil {
			writeErr = err
			cancel()
			return
		}
		delivered++
		if opts.count > 0 && delivered == opts.count*len(targets) {
			cancel()
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func watchTargets(m *model.MBean, names []string) ([]*model.Attribute, error) {
	targets := make([]*model.Attribute, 0, len(names))
	for _, n := range names {
		attr, err := m.Attribute(n)
		if err != nil {
			return nil, err
		}
		targets = append(targets, attr)
	}
	return targets, nil
}
