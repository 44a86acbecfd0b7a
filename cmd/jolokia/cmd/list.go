package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [domain] [mbean]",
		Short: "List MBeans",
		Long: `Lists every MBean, the MBeans of one domain, or the attributes and
operations of one MBean. Overloaded operations are not shown.`,
		Example: `  jolokia list
  jolokia list java.lang
  jolokia list java.lang type=Memory`,
		Args: usageArgs(cobra.MaximumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var domain, name string
			if len(args) > 0 {
				domain = args[0]
			}
			if len(args) > 1 {
				name = args[1]
			}

			c, err := a.newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := a.formatter(cmd)
			if err != nil {
				return err
			}

			if name != "" {
				m, err := a.loadMBean(cmd, c, domain, name)
				if err != nil {
					return err
				}
				return out.MBean(m)
			}

			err = a.withSpinner(cmd, "Listing MBeans...", func() error {
				return c.LoadList(cmd.Context(), domain, "")
			})
			if err != nil {
				return err
			}

			if domain == "" {
				return out.Topology(c.Registry().Snapshot())
			}
			bucket, _ := c.Registry().Domain(domain)
			return out.Topology(model.Topology{domain: bucket})
		},
	}
}
