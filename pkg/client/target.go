package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/go-querystring/query"
)

// ResultTarget names the result set to fetch: either a query id (latest
// execution's results) or a specific execution id. Callers that know
// which identifier they hold should use QueryTarget or ExecutionTarget
// directly; ParseTarget exists for command-line input only.
type ResultTarget struct {
	queryID     uint64
	executionID string
	byQuery     bool
}

// QueryTarget targets the latest execution of the given stored query.
func QueryTarget(queryID uint64) ResultTarget {
	return ResultTarget{queryID: queryID, byQuery: true}
}

// ExecutionTarget targets one specific execution.
func ExecutionTarget(executionID string) ResultTarget {
	return ResultTarget{executionID: executionID}
}

// ParseTarget decides between the two target kinds by parsing the
// identifier: an unsigned integer is taken as a query id, anything else
// as an execution id. An execution id that happens to be all digits is
// misrouted by this heuristic; such callers must build the target
// explicitly.
func ParseTarget(id string) (ResultTarget, error) {
	if id == "" {
		return ResultTarget{}, fmt.Errorf("empty result target identifier")
	}
	if queryID, err := strconv.ParseUint(id, 10, 64); err == nil {
		return QueryTarget(queryID), nil
	}
	return ExecutionTarget(id), nil
}

// IsQuery reports whether the target addresses a query id rather than a
// specific execution.
func (t ResultTarget) IsQuery() bool {
	return t.byQuery
}

// String returns the identifier the target was built from.
func (t ResultTarget) String() string {
	if t.byQuery {
		return strconv.FormatUint(t.queryID, 10)
	}
	return t.executionID
}

// resultsPath returns the endpoint path for the target's result pages.
func (t ResultTarget) resultsPath() string {
	if t.byQuery {
		return fmt.Sprintf("/v1/query/%d/results", t.queryID)
	}
	return fmt.Sprintf("/v1/execution/%s/results", url.PathEscape(t.executionID))
}

// PageQuery is the cursor state for one pagination run. Offset is the
// only field that changes between pages.
type PageQuery struct {
	Offset              uint64
	Limit               uint64
	Columns             []string
	Filter              ResultsFilter
	IgnoreMaxDatapoints bool
}

// The two endpoints share the cursor contract but carry distinct
// parameter shapes, mirroring the server's API.
type queryResultsParams struct {
	Columns             []string `url:"columns,comma,omitempty"`
	Filters             string   `url:"filters,omitempty"`
	QueryID             uint64   `url:"query_id"`
	Offset              uint64   `url:"offset"`
	Limit               uint64   `url:"limit"`
	IgnoreMaxDatapoints bool     `url:"ignore_max_datapoints_per_request"`
}

type executionResultsParams struct {
	Columns             []string `url:"columns,comma,omitempty"`
	Filters             string   `url:"filters,omitempty"`
	ExecutionID         string   `url:"execution_id"`
	Offset              uint64   `url:"offset"`
	Limit               uint64   `url:"limit"`
	IgnoreMaxDatapoints bool     `url:"ignore_max_datapoints_per_request"`
}

// encodeResultsQuery renders the query string for one page request.
func encodeResultsQuery(target ResultTarget, page PageQuery) (url.Values, error) {
	var params any
	if target.byQuery {
		params = queryResultsParams{
			Columns:             page.Columns,
			Filters:             page.Filter.Encode(),
			QueryID:             target.queryID,
			Offset:              page.Offset,
			Limit:               page.Limit,
			IgnoreMaxDatapoints: page.IgnoreMaxDatapoints,
		}
	} else {
		params = executionResultsParams{
			Columns:             page.Columns,
			Filters:             page.Filter.Encode(),
			ExecutionID:         target.executionID,
			Offset:              page.Offset,
			Limit:               page.Limit,
			IgnoreMaxDatapoints: page.IgnoreMaxDatapoints,
		}
	}

	values, err := query.Values(params)
	if err != nil {
		return nil, newEncodingError("encode result page parameters", err)
	}
	return values, nil
}
