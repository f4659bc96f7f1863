// Package cli implements the dune-cli command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dunetools/dune-client-go/pkg/client"
	"github.com/dunetools/dune-client-go/pkg/logging"
)

const apiKeyEnv = "DUNE_API_KEY"

type rootOptions struct {
	apiKey   string
	logLevel string
	pretty   bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dune-cli",
		Short:         "Execute Dune queries and retrieve their results",
		Long:          "Small CLI tool for executing commands of the Dune API client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(opts.logLevel),
				Pretty: opts.pretty,
				Output: os.Stderr,
			})
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.apiKey, "api-key", "k", "",
		"Dune API key (defaults to the "+apiKeyEnv+" environment variable)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false,
		"Human-readable console log output instead of JSON")

	cmd.AddCommand(newExecuteCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newResultsCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newMatviewCmd(opts))

	return cmd
}

// newClient builds the API client from the root options, falling back to
// the environment for the key. A missing key is a startup error.
func (o *rootOptions) newClient() (*client.Client, error) {
	apiKey := o.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: pass --api-key or set %s", apiKeyEnv)
	}
	return client.New(client.DefaultConfig(apiKey))
}

// printJSON renders a response on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseParams decodes the --params JSON object, if any.
func parseParams(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid --params JSON: %w", err)
	}
	return params, nil
}

func parseEngineSize(raw string) (client.EngineSize, error) {
	size, ok := client.ParseEngineSize(strings.ToLower(raw))
	if !ok {
		return "", fmt.Errorf("invalid engine size %q: use 'medium' or 'large'", raw)
	}
	return size, nil
}
