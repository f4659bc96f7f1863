package client

// EngineSize selects the remote compute tier for a query execution.
type EngineSize string

const (
	// EngineMedium is the default compute tier.
	EngineMedium EngineSize = "medium"

	// EngineLarge is the larger, more expensive compute tier.
	EngineLarge EngineSize = "large"
)

// ParseEngineSize accepts the documented names and their single-letter
// shorthands ("m", "large", ...). Matching is case-insensitive via the
// caller lowering the input; an empty string selects EngineMedium.
func ParseEngineSize(s string) (EngineSize, bool) {
	switch s {
	case "", "m", "medium":
		return EngineMedium, true
	case "l", "large":
		return EngineLarge, true
	default:
		return "", false
	}
}

// Row is one result row as returned by the server. Numeric values are
// decoded as json.Number so large integers survive a round trip.
type Row map[string]any

// ResultMetadata describes a result set.
type ResultMetadata struct {
	ColumnNames    []string `json:"column_names"`
	ColumnTypes    []string `json:"column_types"`
	RowCount       uint64   `json:"row_count"`
	TotalRowCount  uint64   `json:"total_row_count"`
	DatapointCount uint64   `json:"datapoint_count"`
}

// ExecuteResponse is the server's answer to a query submission. Its
// execution id is an opaque string, typically a ULID.
type ExecuteResponse struct {
	ExecutionID string          `json:"execution_id"`
	State       ExecutionStatus `json:"state"`
}

func (r *ExecuteResponse) validate() error {
	if r.ExecutionID == "" {
		return errMissingField("execution_id")
	}
	if r.State == 0 {
		return errMissingField("state")
	}
	return nil
}

// ExecutionStatusResponse is the server's answer to a status probe.
// ResultMetadata is only present once the execution has produced results.
type ExecutionStatusResponse struct {
	ExecutionID         string          `json:"execution_id"`
	QueryID             uint64          `json:"query_id"`
	IsExecutionFinished bool            `json:"is_execution_finished"`
	ResultMetadata      *ResultMetadata `json:"result_metadata,omitempty"`
	State               ExecutionStatus `json:"state"`
}

func (r *ExecutionStatusResponse) validate() error {
	if r.ExecutionID == "" {
		return errMissingField("execution_id")
	}
	if r.State == 0 {
		return errMissingField("state")
	}
	return nil
}

// ResultPayload is the row batch and metadata carried by one result page.
type ResultPayload struct {
	Metadata ResultMetadata `json:"metadata"`
	Rows     []Row          `json:"rows"`
}

// ResultPageResponse is one page of an execution's result set. A present
// NextOffset means more pages follow.
type ResultPageResponse struct {
	State               ExecutionStatus `json:"state"`
	ExecutionID         string          `json:"execution_id"`
	IsExecutionFinished bool            `json:"is_execution_finished"`
	NextOffset          *uint64         `json:"next_offset,omitempty"`
	QueryID             uint64          `json:"query_id"`
	Result              ResultPayload   `json:"result"`
}

func (r *ResultPageResponse) validate() error {
	if r.ExecutionID == "" {
		return errMissingField("execution_id")
	}
	if r.State == 0 {
		return errMissingField("state")
	}
	return nil
}

// QueryResult is a fully assembled result set: metadata from the first
// page plus every page's rows in fetch order.
type QueryResult struct {
	Metadata ResultMetadata `json:"metadata"`
	Rows     []Row          `json:"rows"`
}

// MaterializedViewResponse is the metadata document of a materialized
// view.
type MaterializedViewResponse struct {
	Name            string          `json:"name"`
	QueryID         uint64          `json:"query_id"`
	LastRefreshedAt string          `json:"last_refreshed_at,omitempty"`
	ResultMetadata  *ResultMetadata `json:"result_metadata,omitempty"`
}

func (r *MaterializedViewResponse) validate() error {
	if r.Name == "" {
		return errMissingField("name")
	}
	return nil
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return "missing required field " + e.field
}

func errMissingField(field string) error {
	return &missingFieldError{field: field}
}
