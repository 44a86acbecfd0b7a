package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/client"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
)

func newHistoryCmd(a *app) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Configure the agent's history store",
	}
	history.AddCommand(newHistoryEnableCmd(a), newHistoryResetCmd(a))
	return history
}

func newHistoryEnableCmd(a *app) *cobra.Command {
	var (
		limit     protocol.HistoryLimit
		operation bool
	)

	cmd := &cobra.Command{
		Use:   "enable <domain> <mbean> <name>",
		Short: "Keep history for an attribute or operation",
		Long: `Asks the agent to keep up to --count values no older than --seconds for
an attribute, or for an operation with --operation. Zero for both limits
disables history for the target.`,
		Example: `  jolokia history enable java.lang type=Memory HeapMemoryUsage --count 10 --seconds 60`,
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

			if operation {
				err = enableOperationHistory(cmd, c, m, args[2], limit)
			} else {
				err = enableAttributeHistory(cmd, c, m, args[2], limit)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "History enabled for %s %s (count=%d, seconds=%d)\n",
				m.FullyQualifiedName(), args[2], limit.Count, limit.Seconds)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit.Count, "count", 10, "maximum number of entries kept")
	cmd.Flags().IntVar(&limit.Seconds, "seconds", 0, "maximum age of kept entries in seconds")
	cmd.Flags().BoolVar(&operation, "operation", false, "name is an operation instead of an attribute")
	return cmd
}

func enableAttributeHistory(cmd *cobra.Command, c *client.Client, m *model.MBean, name string, limit protocol.HistoryLimit) error {
	attr, err := m.Attribute(name)
	if err != nil {
		return err
	}
	return c.EnableAttributeHistory(cmd.Context(), attr, limit)
}

func enableOperationHistory(cmd *cobra.Command, c *client.Client, m *model.MBean, name string, limit protocol.HistoryLimit) error {
	op, err := m.Operation(name)
	if err != nil {
		return err
	}
	return c.EnableOperationHistory(cmd.Context(), op, limit)
}

func newHistoryResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all history entries kept by the agent",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.ResetHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History reset")
			return nil
		},
	}
}
