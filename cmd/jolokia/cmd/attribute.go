package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "read <domain> <mbean> <attribute>",
		Short:   "Read an attribute",
		Example: `  jolokia read java.lang type=Memory HeapMemoryUsage`,
		Args:    exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := a.loadMBean(cmd, c, args[0], args[1])
			if err != nil {
				return err
			}
			attr, err := m.Attribute(args[2])
			if err != nil {
				return err
			}

			value, err := c.ReadRaw(cmd.Context(), attr)
			if err != nil {
				return err
			}
			out, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			return out.Value(value)
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write <domain> <mbean> <attribute> <value>",
		Short: "Write an attribute and print the previous value",
		Long: `Sets a writable attribute. The value is passed to the agent as text;
the agent converts it to the attribute type.`,
		Example: `  jolokia write java.lang type=Memory Verbose true`,
		Args:    exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := a.loadMBean(cmd, c, args[0], args[1])
			if err != nil {
				return err
			}
			attr, err := m.Attribute(args[2])
			if err != nil {
				return err
			}
			if !attr.Writable {
				return &usageError{err: fmt.Errorf("attribute %s of %s is read-only", attr.Name, attr.Parent)}
			}

			previous, err := c.Write(cmd.Context(), attr, args[3])
			if err != nil {
				return err
			}
			raw, err := json.Marshal(previous)
			if err != nil {
				return err
			}
			out, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			return out.Value(raw)
		},
	}
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <domain> <mbean> <operation> [args...]",
		Short: "Execute an operation",
		Long: `Invokes an operation with positional arguments. The number of arguments
must match the operation signature. Pass [null] for a null argument and
"" for an empty string.`,
		Example: `  jolokia exec java.lang type=Memory gc
  jolokia exec com.sun.management type=HotSpotDiagnostic dumpHeap /tmp/heap.hprof true`,
		Args: usageArgs(cobra.MinimumNArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := a.loadMBean(cmd, c, args[0], args[1])
			if err != nil {
				return err
			}
			op, err := m.Operation(args[2])
			if err != nil {
				return err
			}

			result, err := c.ExecuteRaw(cmd.Context(), op, args[3:]...)
			if err != nil {
				return err
			}
			out, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			return out.Value(result)
		},
	}
}
