// Package cmd implements the jolokia command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jolokia-sdk-go/internal/config"
	"github.com/ajitpratap0/jolokia-sdk-go/internal/format"
	_ "github.com/ajitpratap0/jolokia-sdk-go/pkg/auth"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/client"
	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// Exit codes for CLI commands
const (
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed request or any other runtime error
	ExitCodeError = 1
	// ExitCodeUsage indicates invalid arguments, including an argument
	// count that does not match the operation signature
	ExitCodeUsage = 2
)

// usageError marks errors caused by how the command was invoked
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app holds the state shared by all commands of one invocation
type app struct {
	version    string
	configFile string
	quiet      bool

	cfg    *config.Config
	logger logging.Logger
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitCode(err)
}

// exitCode determines the exit code from the error type
func exitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitCodeUsage
	}

	var mismatch *jerrors.ArgumentMismatchError
	if errors.As(err, &mismatch) {
		return ExitCodeUsage
	}

	return ExitCodeError
}

func newRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:   "jolokia",
		Short: "Inspect and manage JMX MBeans through a Jolokia agent",
		Long: `jolokia talks to a Jolokia agent over HTTP. It lists MBean metadata,
reads and writes attributes, executes operations, configures the agent's
history store and polls attributes on an interval.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "jolokia version %s\n" .Version}}`)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./jolokia.yaml or $HOME/.jolokia/jolokia.yaml)")
	flags.String("url", "", "agent URL, e.g. http://localhost:8778/jolokia")
	flags.StringP("username", "u", "", "basic authentication user")
	flags.StringP("password", "p", "", "basic authentication password")
	flags.Duration("timeout", 0, "request timeout")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.StringP("output", "o", "", "output format: table or json")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress progress indicators")

	root.AddCommand(
		newVersionCmd(a),
		newListCmd(a),
		newReadCmd(a),
		newWriteCmd(a),
		newExecCmd(a),
		newHistoryCmd(a),
		newWatchCmd(a),
	)
	return root
}

// load reads the configuration and builds the logger
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return &usageError{err: err}
	}
	if cfg.Log.Format == "json" {
		a.logger, err = logging.NewZapProduction(level)
	} else {
		a.logger, err = logging.NewZapDevelopment(level)
	}
	return err
}

// newClient connects a client through the configured transport; extra
// middleware wrap the configured chain
func (a *app) newClient(extra ...transport.Middleware) (*client.Client, error) {
	tc := a.cfg.TransportConfig()
	tc.Logger = a.logger

	t, err := transport.NewTransport(tc, extra...)
	if err != nil {
		return nil, err
	}
	c, err := client.New(a.cfg.URL, t, client.WithLogger(a.logger), client.WithName("jolokia-cli"))
	if err != nil {
		_ = t.Close()
		return nil, &usageError{err: err}
	}
	return c, nil
}

func (a *app) formatter(cmd *cobra.Command) (format.Formatter, error) {
	return format.New(cmd.OutOrStdout(), format.Options{Format: format.Format(a.cfg.Output)})
}

// withSpinner runs fn behind a progress spinner on stderr. The spinner only
// draws on a terminal and never for JSON output.
func (a *app) withSpinner(cmd *cobra.Command, message string, fn func() error) error {
	if a.quiet || a.cfg.Output == config.OutputJSON {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()
	return fn()
}

// loadMBean lists one MBean into the client's registry and returns it
func (a *app) loadMBean(cmd *cobra.Command, c *client.Client, domain, name string) (*model.MBean, error) {
	err := a.withSpinner(cmd, "Loading "+domain+":"+name+"...", func() error {
		return c.LoadList(cmd.Context(), domain, name)
	})
	if err != nil {
		return nil, err
	}
	return c.Registry().MBean(domain, name)
}

// exactArgs is cobra.ExactArgs reporting a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
