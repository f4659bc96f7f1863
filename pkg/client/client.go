// Package client provides the core Dune API HTTP client: typed request
// construction, response decoding, and error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/dunetools/dune-client-go/pkg/logging"
)

// Prometheus metrics for Dune API operations.
var (
	duneRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dune_requests_total",
		Help: "Total Dune API requests by operation and status",
	}, []string{"operation", "status"})

	duneRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dune_request_duration_seconds",
		Help:    "Dune API request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	duneErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dune_errors_total",
		Help: "Total Dune API client errors by kind",
	}, []string{"kind"})
)

const (
	// DefaultBaseURL is the production Dune API endpoint.
	DefaultBaseURL = "https://api.dune.com/api"

	// DefaultHTTPTimeout bounds every request. The underlying transport
	// has no default of its own, so an explicit bound is configured here.
	DefaultHTTPTimeout = 30 * time.Second

	apiKeyHeader = "X-Dune-API-Key"
)

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates every request (REQUIRED). It is sent as a
	// header, never as a URL parameter.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// HTTPTimeout bounds each request end to end.
	HTTPTimeout time.Duration
}

// DefaultConfig returns a safe default configuration for the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// Client is the Dune API client. It is stateless between calls and safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Dune API client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		config: cfg,
		logger: logging.NewLogger("dune-client"),
	}, nil
}

// executeBody is the JSON body of a submit call.
type executeBody struct {
	Performance     EngineSize     `json:"performance"`
	QueryParameters map[string]any `json:"query_parameters,omitempty"`
}

// ExecuteQuery submits a query for asynchronous execution and returns
// its execution handle.
func (c *Client) ExecuteQuery(ctx context.Context, queryID uint64, size EngineSize, params map[string]any) (*ExecuteResponse, error) {
	body, err := json.Marshal(executeBody{Performance: size, QueryParameters: params})
	if err != nil {
		duneErrorsTotal.WithLabelValues(string(ErrorKindEncoding)).Inc()
		return nil, newEncodingError("encode execute body", err)
	}

	path := fmt.Sprintf("/v1/query/%d/execute", queryID)
	var resp ExecuteResponse
	if err := c.do(ctx, http.MethodPost, "execute", path, nil, bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}

	c.logger.Info().
		Uint64("query_id", queryID).
		Str("execution_id", resp.ExecutionID).
		Str("state", resp.State.String()).
		Msg("Query execution submitted")

	return &resp, nil
}

// GetExecutionStatus fetches the current status of an execution.
func (c *Client) GetExecutionStatus(ctx context.Context, executionID string) (*ExecutionStatusResponse, error) {
	path := fmt.Sprintf("/v1/execution/%s/status", url.PathEscape(executionID))
	var resp ExecutionStatusResponse
	if err := c.do(ctx, http.MethodGet, "status", path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResultPage fetches one page of results for the target.
func (c *Client) GetResultPage(ctx context.Context, target ResultTarget, page PageQuery) (*ResultPageResponse, error) {
	values, err := encodeResultsQuery(target, page)
	if err != nil {
		duneErrorsTotal.WithLabelValues(string(ErrorKindEncoding)).Inc()
		return nil, err
	}

	var resp ResultPageResponse
	if err := c.do(ctx, http.MethodGet, "results", target.resultsPath(), values, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMaterializedView fetches the metadata document of a materialized
// view by name.
func (c *Client) GetMaterializedView(ctx context.Context, name string) (*MaterializedViewResponse, error) {
	path := fmt.Sprintf("/v1/materialized-views/%s", url.PathEscape(name))
	var resp MaterializedViewResponse
	if err := c.do(ctx, http.MethodGet, "matview", path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type validator interface {
	validate() error
}

// do performs one request and decodes the response into out. It is the
// single choke point for headers, metrics, and error classification.
func (c *Client) do(ctx context.Context, method, operation, path string, params url.Values, body io.Reader, out validator) error {
	requestID := uuid.NewString()

	startTime := time.Now()
	defer func() {
		duneRequestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	endpoint := c.config.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		duneErrorsTotal.WithLabelValues(string(ErrorKindRequest)).Inc()
		return newRequestError(0, "create request", err)
	}
	req.Header.Set(apiKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("operation", operation).
		Str("method", method).
		Str("path", path).
		Msg("Executing Dune API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("operation", operation).
			Msg("HTTP request failed")
		duneErrorsTotal.WithLabelValues(string(ErrorKindRequest)).Inc()
		duneRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		return newRequestError(0, "perform request", err)
	}
	defer resp.Body.Close()

	duneRequestsTotal.WithLabelValues(operation, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Str("request_id", requestID).
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Msg("Dune API request error")
		duneErrorsTotal.WithLabelValues(string(ErrorKindRequest)).Inc()
		return newRequestError(resp.StatusCode, resp.Status, nil)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		c.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("operation", operation).
			Msg("Failed to decode Dune API response")
		duneErrorsTotal.WithLabelValues(string(ErrorKindParse)).Inc()
		return newParseError("decode response body", err)
	}
	if err := out.validate(); err != nil {
		duneErrorsTotal.WithLabelValues(string(ErrorKindParse)).Inc()
		return newParseError("invalid response body", err)
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
