package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status <execution-id>",
		Short:   "Retrieve the status of a query execution",
		Example: `  dune-cli status 01J5ZMD33P6J413G1KQM6QTE4S`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.newClient()
			if err != nil {
				return err
			}

			resp, err := c.GetExecutionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func newMatviewCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "matview <name>",
		Short:   "Retrieve metadata of a materialized view",
		Example: `  dune-cli matview result_top_balances`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.newClient()
			if err != nil {
				return err
			}

			resp, err := c.GetMaterializedView(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}
