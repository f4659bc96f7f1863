package cli

import (
	"github.com/spf13/cobra"

	"github.com/dunetools/dune-client-go/pkg/client"
	"github.com/dunetools/dune-client-go/pkg/csvout"
	"github.com/dunetools/dune-client-go/pkg/pagination"
)

func newResultsCmd(root *rootOptions) *cobra.Command {
	var (
		filters []string
		peek    bool
		csvPath string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "results <id>",
		Short: "Retrieve results for a previously executed query",
		Long: `Fetches the result set for the given identifier. A numeric identifier is
treated as a query id (latest execution's results); anything else as an
execution id. Execution ids consisting only of digits are misread as
query ids by this rule.`,
		Example: `  dune-cli results 01J5ZMD33P6J413G1KQM6QTE4S
  dune-cli results 4011227 --peek
  dune-cli results 4011227 --filter "balance > 1000" --csv balances.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := client.ParseTarget(args[0])
			if err != nil {
				return err
			}

			filter := client.NewResultsFilter()
			for _, expr := range filters {
				filter = filter.Add(expr)
			}

			c, err := root.newClient()
			if err != nil {
				return err
			}

			result, err := pagination.NewFetcher(c).FetchAll(cmd.Context(), target, pagination.Options{
				Peek:    peek,
				Columns: columns,
				Filter:  filter,
			})
			if err != nil {
				return err
			}

			return writeResult(result, csvPath)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil,
		"Row filter expression '<column> <operator> <literal>' (repeatable, joined with AND)")
	cmd.Flags().BoolVar(&peek, "peek", false,
		"Fetch only the first page for quick inspection")
	cmd.Flags().StringVar(&csvPath, "csv", "",
		"Write the rows to a CSV file at this path instead of stdout")
	cmd.Flags().StringSliceVar(&columns, "columns", nil,
		"Restrict the result to these columns")

	return cmd
}

// writeResult sends the assembled result either to a CSV file or to
// stdout as JSON.
func writeResult(result *client.QueryResult, csvPath string) error {
	if csvPath == "" {
		return printJSON(result)
	}
	return csvout.WriteFile(csvPath, result.Rows, csvout.Options{
		Columns: result.Metadata.ColumnNames,
	})
}
