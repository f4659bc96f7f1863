package pagination

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dunetools/dune-client-go/pkg/client"
	"github.com/dunetools/dune-client-go/pkg/logging"
)

// Prometheus metrics for pagination runs.
var (
	dunePagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dune_result_pages_fetched_total",
		Help: "Total result pages fetched across all pagination runs",
	})

	duneRowsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dune_result_rows_fetched_total",
		Help: "Total result rows fetched across all pagination runs",
	})
)

// Page-size presets. Peek is a quick single-page inspection; Full is the
// page size used when assembling a complete result set.
const (
	PeekLimit uint64 = 10
	FullLimit uint64 = 1000
)

// Log a progress line every this many pages.
const progressInterval = 10

// PageFetcher is the interface the Dune client implements for
// single-page fetching.
type PageFetcher interface {
	GetResultPage(ctx context.Context, target client.ResultTarget, page client.PageQuery) (*client.ResultPageResponse, error)
}

// Options configures one pagination run. The zero value fetches every
// page at FullLimit with no projection or filter.
type Options struct {
	// Peek truncates the run to the first page, regardless of whether
	// more pages exist. The result is partial by construction, not an
	// error.
	Peek bool

	// Limit is the page size. Zero selects PeekLimit or FullLimit
	// depending on Peek.
	Limit uint64

	// Columns is an optional projection; empty fetches all columns.
	Columns []string

	// Filter is an optional row filter, validated only by the server.
	Filter client.ResultsFilter

	// IgnoreMaxDatapoints disables the server's datapoints-per-request
	// guard.
	IgnoreMaxDatapoints bool
}

func (o Options) pageLimit() uint64 {
	if o.Limit > 0 {
		return o.Limit
	}
	if o.Peek {
		return PeekLimit
	}
	return FullLimit
}

// Fetcher reassembles a complete result set from offset-based pages.
type Fetcher struct {
	fetcher PageFetcher
	logger  zerolog.Logger
}

// NewFetcher creates a pagination fetcher on top of a page source.
func NewFetcher(fetcher PageFetcher) *Fetcher {
	return &Fetcher{
		fetcher: fetcher,
		logger:  logging.NewLogger("pagination"),
	}
}

// FetchAll fetches the target's result set page by page and concatenates
// the rows in offset order. The target's execution must already be
// finished; if the server reports otherwise the run fails immediately
// with a query_not_finished error instead of waiting.
func (f *Fetcher) FetchAll(ctx context.Context, target client.ResultTarget, opts Options) (*client.QueryResult, error) {
	start := time.Now()

	// One cursor per run; offset is the only field that moves.
	page := client.PageQuery{
		Offset:              0,
		Limit:               opts.pageLimit(),
		Columns:             opts.Columns,
		Filter:              opts.Filter,
		IgnoreMaxDatapoints: opts.IgnoreMaxDatapoints,
	}

	resp, err := f.fetcher.GetResultPage(ctx, target, page)
	if err != nil {
		return nil, err
	}

	if !resp.IsExecutionFinished {
		f.logger.Warn().
			Str("target", target.String()).
			Str("state", resp.State.String()).
			Msg("Execution not finished; refusing to paginate")
		return nil, client.NewQueryNotFinishedError(resp.ExecutionID)
	}

	// Metadata comes from the first page; later pages repeat it.
	result := &client.QueryResult{
		Metadata: resp.Result.Metadata,
		Rows:     resp.Result.Rows,
	}
	pagesFetched := 1
	dunePagesFetchedTotal.Inc()
	duneRowsFetchedTotal.Add(float64(len(resp.Result.Rows)))

	if opts.Peek {
		f.logger.Info().
			Str("target", target.String()).
			Int("rows", len(result.Rows)).
			Msg("Peek fetch complete")
		return result, nil
	}

	for resp.NextOffset != nil {
		next := *resp.NextOffset
		if next <= page.Offset {
			return nil, client.NewOffsetRegressionError(page.Offset, next)
		}
		page.Offset = next

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err = f.fetcher.GetResultPage(ctx, target, page)
		if err != nil {
			return nil, err
		}

		result.Rows = append(result.Rows, resp.Result.Rows...)
		pagesFetched++
		dunePagesFetchedTotal.Inc()
		duneRowsFetchedTotal.Add(float64(len(resp.Result.Rows)))

		if pagesFetched%progressInterval == 0 {
			f.logger.Info().
				Str("target", target.String()).
				Int("pages", pagesFetched).
				Int("rows", len(result.Rows)).
				Uint64("total_rows", result.Metadata.TotalRowCount).
				Msg("Fetch progress")
		}
	}

	f.logger.Info().
		Str("target", target.String()).
		Int("pages", pagesFetched).
		Int("rows", len(result.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return result, nil
}
