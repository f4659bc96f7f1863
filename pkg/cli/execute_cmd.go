package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newExecuteCmd(root *rootOptions) *cobra.Command {
	var (
		engineSize string
		params     string
	)

	cmd := &cobra.Command{
		Use:   "execute <query-id>",
		Short: "Submit a query for asynchronous execution",
		Long: `Submits the given stored query for execution and prints the execution
handle. Use 'status' to track it and 'results' to fetch its output.`,
		Example: `  dune-cli execute 4011227
  dune-cli execute 4011227 --engine-size large --params '{"days": 30}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}

			size, err := parseEngineSize(engineSize)
			if err != nil {
				return err
			}

			queryParams, err := parseParams(params)
			if err != nil {
				return err
			}

			c, err := root.newClient()
			if err != nil {
				return err
			}

			resp, err := c.ExecuteQuery(cmd.Context(), queryID, size, queryParams)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&engineSize, "engine-size", "medium",
		"Engine size for the execution ('medium' or 'large')")
	cmd.Flags().StringVar(&params, "params", "",
		"Query parameters as a JSON object")

	return cmd
}
