package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dunetools/dune-client-go/pkg/runner"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		engineSize   string
		params       string
		peek         bool
		csvPath      string
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <query-id>",
		Short: "Execute a query and wait until its results are ready",
		Long: `Submits the query, polls the execution until it reaches a terminal
status, and fetches the full result set. The process blocks for the
whole run; interrupting it abandons the wait but not the remote
execution.`,
		Example: `  dune-cli run 4011227
  dune-cli run 4011227 --engine-size large --poll-interval 30s --csv out.csv`,
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

			result, err := runner.New(c).ExecuteAndWait(cmd.Context(), queryID, size, queryParams, runner.ResultOptions{
				PollInterval: pollInterval,
				Peek:         peek,
			})
			if err != nil {
				return err
			}

			return writeResult(result, csvPath)
		},
	}

	cmd.Flags().StringVar(&engineSize, "engine-size", "medium",
		"Engine size for the execution ('medium' or 'large')")
	cmd.Flags().StringVar(&params, "params", "",
		"Query parameters as a JSON object")
	cmd.Flags().BoolVar(&peek, "peek", false,
		"Fetch only the first page of results")
	cmd.Flags().StringVar(&csvPath, "csv", "",
		"Write the rows to a CSV file at this path instead of stdout")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0,
		"Wait between status probes (default 60s)")

	return cmd
}
