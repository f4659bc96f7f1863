package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	c, err := New(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, DefaultHTTPTimeout, c.config.HTTPTimeout)
}

// newTestClient points a client at the given test server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestExecuteQuery(t *testing.T) {
	var (
		gotMethod      string
		gotPath        string
		gotAPIKey      string
		gotContentType string
		gotBody        []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-Dune-API-Key")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"execution_id": "01J5ZMD33P6J413G1KQM6QTE4S", "state": "QUERY_STATE_PENDING"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server)

	resp, err := c.ExecuteQuery(context.Background(), 4011227, EngineMedium, map[string]any{"days": 30})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/query/4011227/execute", gotPath)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "application/json", gotContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.Equal(t, "medium", body["performance"])
	assert.Equal(t, map[string]any{"days": float64(30)}, body["query_parameters"])

	assert.Equal(t, "01J5ZMD33P6J413G1KQM6QTE4S", resp.ExecutionID)
	assert.Equal(t, StatusPending, resp.State)
}

func TestExecuteQuery_NoParamsOmitsField(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"execution_id": "abc", "state": "QUERY_STATE_PENDING"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ExecuteQuery(context.Background(), 1, EngineLarge, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"performance": "large"}`, string(gotBody))
}

func TestGetExecutionStatus(t *testing.T) {
	// A finished-execution body as the server actually sends it, with
	// fields this client does not model.
	const body = `{
		"execution_id": "01J5ZMD33P6J413G1KQM6QTE4S",
		"query_id": 4011227,
		"is_execution_finished": true,
		"state": "QUERY_STATE_COMPLETED",
		"submitted_at": "2024-08-23T12:46:55.606607Z",
		"result_metadata": {
			"column_names": ["address", "balance", "balance_usd"],
			"column_types": ["varbinary", "double", "double"],
			"row_count": 1068677,
			"total_row_count": 1068677,
			"datapoint_count": 3206031,
			"execution_time_millis": 1122148
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/execution/01J5ZMD33P6J413G1KQM6QTE4S/status", r.URL.Path)
		io.WriteString(w, body)
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).GetExecutionStatus(context.Background(), "01J5ZMD33P6J413G1KQM6QTE4S")
	require.NoError(t, err)

	assert.Equal(t, uint64(4011227), resp.QueryID)
	assert.True(t, resp.IsExecutionFinished)
	assert.Equal(t, StatusCompleted, resp.State)
	require.NotNil(t, resp.ResultMetadata)
	assert.Equal(t, []string{"address", "balance", "balance_usd"}, resp.ResultMetadata.ColumnNames)
	assert.Equal(t, uint64(1068677), resp.ResultMetadata.TotalRowCount)
	assert.Equal(t, uint64(3206031), resp.ResultMetadata.DatapointCount)
}

func TestGetExecutionStatus_InProgressHasNoMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"execution_id": "01J5ZV5R55K2MA1943RFX994B3", "query_id": 4011227, "is_execution_finished": false, "state": "QUERY_STATE_EXECUTING"}`)
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).GetExecutionStatus(context.Background(), "01J5ZV5R55K2MA1943RFX994B3")
	require.NoError(t, err)

	assert.False(t, resp.IsExecutionFinished)
	assert.Equal(t, StatusExecuting, resp.State)
	assert.Nil(t, resp.ResultMetadata)
}

func TestDo_Non2xxIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).GetExecutionStatus(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindRequest))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusUnauthorized, ce.StatusCode)
}

func TestDo_UnknownStatusTokenIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"execution_id": "abc", "query_id": 1, "is_execution_finished": false, "state": "QUERY_STATE_HIBERNATING"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).GetExecutionStatus(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindParse))
}

func TestDo_MissingRequiredFieldIsParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing execution id", `{"state": "QUERY_STATE_PENDING"}`},
		{"missing state", `{"execution_id": "abc", "query_id": 1, "is_execution_finished": false}`},
		{"not json", `<html>502 Bad Gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server).GetExecutionStatus(context.Background(), "abc")
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrorKindParse), "got %v", err)
		})
	}
}

func TestGetResultPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/execution/01J5ZMD3/results", r.URL.Path)
		assert.Equal(t, "500", r.URL.Query().Get("offset"))
		assert.Equal(t, "500", r.URL.Query().Get("limit"))

		io.WriteString(w, `{
			"state": "QUERY_STATE_COMPLETED",
			"execution_id": "01J5ZMD3",
			"is_execution_finished": true,
			"next_offset": 1000,
			"query_id": 4011227,
			"result": {
				"metadata": {
					"column_names": ["address", "balance"],
					"column_types": ["varbinary", "double"],
					"row_count": 500,
					"total_row_count": 1500,
					"datapoint_count": 3000
				},
				"rows": [
					{"address": "0xabc", "balance": 123456789012345678901}
				]
			}
		}`)
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).GetResultPage(context.Background(),
		ExecutionTarget("01J5ZMD3"), PageQuery{Offset: 500, Limit: 500})
	require.NoError(t, err)

	require.NotNil(t, resp.NextOffset)
	assert.Equal(t, uint64(1000), *resp.NextOffset)
	assert.Equal(t, uint64(1500), resp.Result.Metadata.TotalRowCount)

	require.Len(t, resp.Result.Rows, 1)
	assert.Equal(t, "0xabc", resp.Result.Rows[0]["address"])

	// Numbers survive as json.Number, so oversized integers keep their
	// exact textual form.
	num, ok := resp.Result.Rows[0]["balance"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "123456789012345678901", num.String())
}

func TestGetMaterializedView(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/materialized-views/result_top_balances", r.URL.Path)
		io.WriteString(w, `{"name": "result_top_balances", "query_id": 4011227, "last_refreshed_at": "2024-08-23T12:46:55Z"}`)
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).GetMaterializedView(context.Background(), "result_top_balances")
	require.NoError(t, err)
	assert.Equal(t, "result_top_balances", resp.Name)
	assert.Equal(t, uint64(4011227), resp.QueryID)
}

func TestDo_TransportFailureIsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.GetExecutionStatus(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindRequest))
}

type failingTransport struct {
	err error
}

func (ft failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, ft.err
}

func TestSetHTTPClient_InjectedClientIsUsed(t *testing.T) {
	c, err := New(DefaultConfig("test-key"))
	require.NoError(t, err)

	cause := errors.New("proxy unreachable")
	c.SetHTTPClient(&http.Client{Transport: failingTransport{err: cause}})

	_, err = c.GetExecutionStatus(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorKindRequest))
	assert.ErrorIs(t, err, cause)
}
