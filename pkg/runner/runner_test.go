package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunetools/dune-client-go/internal/testutil"
	"github.com/dunetools/dune-client-go/pkg/client"
)

func newTestRunner(t *testing.T, mock *testutil.MockDune) *Runner {
	t.Helper()

	cfg := client.DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)
	return New(c)
}

func TestExecuteAndWait_FullRun(t *testing.T) {
	mock := testutil.NewMockDune()
	defer mock.Close()

	rows := testutil.GenerateRows(1500, "address", "balance")
	mock.SetExecuteResponse(4011227, "QUERY_STATE_PENDING")
	mock.SetStatusSequence(testutil.ExecutionID, 4011227,
		"QUERY_STATE_EXECUTING", "QUERY_STATE_EXECUTING", "QUERY_STATE_COMPLETED")
	mock.SetPaginatedResults(testutil.ExecutionID, 4011227, []string{"address", "balance"}, rows)

	result, err := newTestRunner(t, mock).ExecuteAndWait(context.Background(),
		4011227, client.EngineMedium, nil, ResultOptions{PollInterval: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, uint64(1500), result.Metadata.TotalRowCount)
	assert.Equal(t, uint64(len(result.Rows)), result.Metadata.TotalRowCount)
	// 1 execute + 3 status probes + 2 result pages.
	assert.Equal(t, 6, mock.GetRequestCount())
	assert.Equal(t, "test-key", mock.APIKeyReceived)
}

func TestAwaitExisting_FailedExecutionSkipsPagination(t *testing.T) {
	mock := testutil.NewMockDune()
	defer mock.Close()

	mock.SetStatusSequence(testutil.ExecutionID, 4011227, "QUERY_STATE_FAILED")

	_, err := newTestRunner(t, mock).AwaitExisting(context.Background(),
		testutil.ExecutionID, ResultOptions{PollInterval: time.Millisecond})
	require.Error(t, err)

	status, ok := client.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, client.StatusFailed, status)
	// The failure surfaced from the status probe alone; no results
	// endpoint was ever hit.
	assert.Equal(t, 1, mock.GetRequestCount())
}

func TestAwaitExisting_PeekFetchesOnePage(t *testing.T) {
	mock := testutil.NewMockDune()
	defer mock.Close()

	rows := testutil.GenerateRows(5000, "address")
	mock.SetStatusSequence(testutil.ExecutionID, 4011227, "QUERY_STATE_COMPLETED")
	mock.SetPaginatedResults(testutil.ExecutionID, 4011227, []string{"address"}, rows)

	result, err := newTestRunner(t, mock).AwaitExisting(context.Background(),
		testutil.ExecutionID, ResultOptions{PollInterval: time.Millisecond, Peek: true})
	require.NoError(t, err)

	assert.Len(t, result.Rows, 10)
	assert.Equal(t, uint64(5000), result.Metadata.TotalRowCount)
	// 1 status probe + 1 page.
	assert.Equal(t, 2, mock.GetRequestCount())
}

func TestExecuteAndWait_SubmitFailurePropagates(t *testing.T) {
	mock := testutil.NewMockDune()
	defer mock.Close()

	mock.SetResponse("/v1/query/4011227/execute", testutil.MockResponse{
		StatusCode: 402,
		Body:       `{"error": "payment required"}`,
	})

	_, err := newTestRunner(t, mock).ExecuteAndWait(context.Background(),
		4011227, client.EngineLarge, nil, ResultOptions{PollInterval: time.Millisecond})
	require.Error(t, err)
	assert.True(t, client.IsKind(err, client.ErrorKindRequest))
	assert.Equal(t, 1, mock.GetRequestCount())
}
