// Package poller tracks a remote query execution from submission to a
// terminal status by probing the status endpoint at a fixed interval.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dunetools/dune-client-go/pkg/client"
	"github.com/dunetools/dune-client-go/pkg/logging"
)

// Prometheus metrics for poll loops.
var (
	dunePollTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dune_poll_ticks_total",
		Help: "Total poll ticks by observed execution state",
	}, []string{"state"})

	dunePollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dune_poll_duration_seconds",
		Help:    "Wall-clock duration of poll loops until a terminal state",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	})
)

// DefaultInterval is the wait between poll ticks when none is
// configured.
const DefaultInterval = 60 * time.Second

// StatusFetcher is the interface the Dune client implements for status
// probes.
type StatusFetcher interface {
	GetExecutionStatus(ctx context.Context, executionID string) (*client.ExecutionStatusResponse, error)
}

// Poller waits for an execution to reach a terminal status. There is no
// attempt bound and no backoff: each tick is a fixed-interval probe,
// forever, until a terminal status, a transport error, or cancellation.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	logger   zerolog.Logger
}

// Option customizes a Poller.
type Option func(*Poller)

// WithInterval overrides the wait between status probes. Tests inject a
// near-zero interval to bound their runtime.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// New creates a poller on top of a status source.
func New(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultInterval,
		logger:   logging.NewLogger("poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitForCompletion polls the execution until it reaches a terminal
// status. It returns the final status response for Completed and
// CompletedPartial; Failed, Cancelled and Expired surface as a
// query_status error. Transport and decode errors propagate immediately
// and end the loop. Cancellation is honored before every probe and
// during every interval wait.
func (p *Poller) WaitForCompletion(ctx context.Context, executionID string) (*client.ExecutionStatusResponse, error) {
	start := time.Now()
	defer func() {
		dunePollDuration.Observe(time.Since(start).Seconds())
	}()

	for tick := 1; ; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("poll cancelled: %w", err)
		}

		resp, err := p.fetcher.GetExecutionStatus(ctx, executionID)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("execution_id", executionID).
				Int("tick", tick).
				Msg("Status probe failed")
			return nil, err
		}

		dunePollTicksTotal.WithLabelValues(resp.State.String()).Inc()

		if resp.State.IsTerminal() {
			if !resp.State.CanFetchResults() {
				p.logger.Warn().
					Str("execution_id", executionID).
					Str("state", resp.State.String()).
					Msg("Execution ended in failure state")
				return nil, client.NewQueryStatusError(resp.State)
			}

			p.logger.Info().
				Str("execution_id", executionID).
				Str("state", resp.State.String()).
				Int("ticks", tick).
				Dur("waited", time.Since(start)).
				Msg("Execution finished")
			return resp, nil
		}

		p.logger.Debug().
			Str("execution_id", executionID).
			Str("state", resp.State.String()).
			Dur("interval", p.interval).
			Msg("Execution not finished; waiting")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("poll cancelled: %w", ctx.Err())
		case <-time.After(p.interval):
		}
	}
}
