// Package runner composes the execution poller and the pagination
// fetcher for the submit-and-wait-for-results use case.
package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dunetools/dune-client-go/pkg/client"
	"github.com/dunetools/dune-client-go/pkg/logging"
	"github.com/dunetools/dune-client-go/pkg/pagination"
	"github.com/dunetools/dune-client-go/pkg/poller"
)

// ResultOptions carries the per-invocation knobs for a full run.
type ResultOptions struct {
	// PollInterval overrides the wait between status probes. Zero keeps
	// the poller default.
	PollInterval time.Duration

	// Peek truncates result retrieval to the first page.
	Peek bool

	// Columns is an optional projection for result retrieval.
	Columns []string

	// Filter is an optional row filter for result retrieval.
	Filter client.ResultsFilter
}

// Runner drives one query run end to end. It holds no state between
// invocations; each call owns its own poll loop and pagination cursor.
type Runner struct {
	client *client.Client
	pages  *pagination.Fetcher
	logger zerolog.Logger
}

// New creates a runner on top of a Dune API client.
func New(c *client.Client) *Runner {
	return &Runner{
		client: c,
		pages:  pagination.NewFetcher(c),
		logger: logging.NewLogger("runner"),
	}
}

// ExecuteAndWait submits the query, polls the resulting execution to a
// terminal status, and fetches the full result set.
func (r *Runner) ExecuteAndWait(ctx context.Context, queryID uint64, size client.EngineSize, params map[string]any, opts ResultOptions) (*client.QueryResult, error) {
	exec, err := r.client.ExecuteQuery(ctx, queryID, size, params)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Uint64("query_id", queryID).
		Str("execution_id", exec.ExecutionID).
		Msg("Awaiting execution")

	return r.AwaitExisting(ctx, exec.ExecutionID, opts)
}

// AwaitExisting polls a previously submitted execution to a terminal
// status and fetches the full result set.
func (r *Runner) AwaitExisting(ctx context.Context, executionID string, opts ResultOptions) (*client.QueryResult, error) {
	var pollOpts []poller.Option
	if opts.PollInterval > 0 {
		pollOpts = append(pollOpts, poller.WithInterval(opts.PollInterval))
	}

	status, err := poller.New(r.client, pollOpts...).WaitForCompletion(ctx, executionID)
	if err != nil {
		return nil, err
	}

	return r.pages.FetchAll(ctx, client.ExecutionTarget(status.ExecutionID), pagination.Options{
		Peek:    opts.Peek,
		Columns: opts.Columns,
		Filter:  opts.Filter,
	})
}
