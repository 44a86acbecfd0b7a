package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agent version and protocol",
		Long:  `Queries the agent's version endpoint. Use --version for the CLI version.`,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := c.LoadVersion(cmd.Context()); err != nil {
				return err
			}
			out, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			return out.Version(c.AgentInfo())
		},
	}
}
