// Package testutil provides testing utilities for the Dune API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ExecutionID is the canned execution identifier used across tests.
const ExecutionID = "01J5ZMD33P6J413G1KQM6QTE4S"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
}

// MockDune is a configurable mock Dune API server for testing.
type MockDune struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount   int
	APIKeyReceived string
	LastQuery      map[string]string
}

// NewMockDune creates a new mock Dune API server.
func NewMockDune() *MockDune {
	mock := &MockDune{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.APIKeyReceived = r.Header.Get("X-Dune-API-Key")
		mock.LastQuery = make(map[string]string)
		for key, values := range r.URL.Query() {
			mock.LastQuery[key] = values[0]
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server's base URL, used as the client BaseURL.
func (m *MockDune) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockDune) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockDune) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.APIKeyReceived = ""
	m.LastQuery = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockDune) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockDune) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockDune) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			fmt.Fprint(w, resp.Body)
		}
	})
}

// SetExecuteResponse configures the submit endpoint for a query to
// return the canned execution id in the given state.
func (m *MockDune) SetExecuteResponse(queryID uint64, state string) {
	path := fmt.Sprintf("/v1/query/%d/execute", queryID)
	m.SetResponse(path, MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"execution_id": %q, "state": %q}`, ExecutionID, state),
	})
}

// SetStatusSequence configures the status endpoint to walk through the
// given states, one per request, holding the final state afterwards.
func (m *MockDune) SetStatusSequence(executionID string, queryID uint64, states ...string) {
	var mu sync.Mutex
	call := 0

	path := fmt.Sprintf("/v1/execution/%s/status", executionID)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		state := states[call]
		if call < len(states)-1 {
			call++
		}
		mu.Unlock()

		finished := state != "QUERY_STATE_PENDING" && state != "QUERY_STATE_EXECUTING"
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"execution_id": %q, "query_id": %d, "is_execution_finished": %t, "state": %q}`,
			executionID, queryID, finished, state)
	})
}

// resultPage is the wire shape of one mock results response.
type resultPage struct {
	State               string        `json:"state"`
	ExecutionID         string        `json:"execution_id"`
	IsExecutionFinished bool          `json:"is_execution_finished"`
	NextOffset          *uint64       `json:"next_offset,omitempty"`
	QueryID             uint64        `json:"query_id"`
	Result              resultPayload `json:"result"`
}

type resultPayload struct {
	Metadata resultMetadata   `json:"metadata"`
	Rows     []map[string]any `json:"rows"`
}

// resultMetadata mirrors the server's result_metadata document.
type resultMetadata struct {
	ColumnNames    []string `json:"column_names"`
	ColumnTypes    []string `json:"column_types"`
	RowCount       int      `json:"row_count"`
	TotalRowCount  int      `json:"total_row_count"`
	DatapointCount int      `json:"datapoint_count"`
}

// SetPaginatedResults serves the rows from the execution-results
// endpoint in pages of pageSize, honoring the offset and limit query
// parameters the way the real server does.
func (m *MockDune) SetPaginatedResults(executionID string, queryID uint64, columns []string, rows []map[string]any) {
	path := fmt.Sprintf("/v1/execution/%s/results", executionID)
	m.SetHandler(path, m.resultsHandler(executionID, queryID, columns, rows))
}

// SetQueryResults serves the same pages from the query-results endpoint
// (latest-execution fetch).
func (m *MockDune) SetQueryResults(executionID string, queryID uint64, columns []string, rows []map[string]any) {
	path := fmt.Sprintf("/v1/query/%d/results", queryID)
	m.SetHandler(path, m.resultsHandler(executionID, queryID, columns, rows))
}

func (m *MockDune) resultsHandler(executionID string, queryID uint64, columns []string, rows []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var offset, limit uint64
		fmt.Sscan(r.URL.Query().Get("offset"), &offset)
		fmt.Sscan(r.URL.Query().Get("limit"), &limit)
		if limit == 0 {
			limit = 1000
		}

		end := offset + limit
		if end > uint64(len(rows)) {
			end = uint64(len(rows))
		}
		var batch []map[string]any
		if offset < uint64(len(rows)) {
			batch = rows[offset:end]
		}

		page := resultPage{
			State:               "QUERY_STATE_COMPLETED",
			ExecutionID:         executionID,
			IsExecutionFinished: true,
			QueryID:             queryID,
			Result: resultPayload{
				Metadata: resultMetadata{
					ColumnNames:    columns,
					ColumnTypes:    make([]string, len(columns)),
					RowCount:       len(batch),
					TotalRowCount:  len(rows),
					DatapointCount: len(rows) * len(columns),
				},
				Rows: batch,
			},
		}
		if end < uint64(len(rows)) {
			page.NextOffset = &end
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// SetUnfinishedResults configures the execution-results endpoint to
// report an execution that is still running.
func (m *MockDune) SetUnfinishedResults(executionID string, queryID uint64) {
	path := fmt.Sprintf("/v1/execution/%s/results", executionID)
	m.SetResponse(path, MockResponse{
		StatusCode: http.StatusOK,
		Body: fmt.Sprintf(`{"state": "QUERY_STATE_EXECUTING", "execution_id": %q, "is_execution_finished": false, "query_id": %d, "result": {"metadata": {"column_names": [], "column_types": [], "row_count": 0, "total_row_count": 0, "datapoint_count": 0}, "rows": []}}`,
			executionID, queryID),
	})
}

// GenerateRows builds n synthetic result rows over the given columns.
func GenerateRows(n int, columns ...string) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		row := make(map[string]any, len(columns))
		for j, col := range columns {
			row[col] = fmt.Sprintf("%s-%d", col, i*len(columns)+j)
		}
		rows[i] = row
	}
	return rows
}
