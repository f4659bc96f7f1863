package client

import (
	"encoding/json"
	"fmt"
)

// ExecutionStatus is the state of a remote query execution. The wire
// representation is a closed set of upper-snake-case tokens; decoding any
// other token is an error so that new server states surface explicitly
// instead of being misread as success or failure.
type ExecutionStatus int

const (
	// StatusPending means the execution is queued but not yet running.
	StatusPending ExecutionStatus = iota + 1

	// StatusExecuting means the execution is currently running.
	StatusExecuting

	// StatusFailed means the execution failed remotely.
	StatusFailed

	// StatusCompleted means the execution finished successfully.
	StatusCompleted

	// StatusCancelled means the execution was cancelled.
	StatusCancelled

	// StatusExpired means the execution's results are no longer available.
	StatusExpired

	// StatusCompletedPartial means the execution finished but the result
	// set was truncated by the server.
	StatusCompletedPartial
)

var statusTokens = map[string]ExecutionStatus{
	"QUERY_STATE_PENDING":           StatusPending,
	"QUERY_STATE_EXECUTING":         StatusExecuting,
	"QUERY_STATE_FAILED":            StatusFailed,
	"QUERY_STATE_COMPLETED":         StatusCompleted,
	"QUERY_STATE_CANCELLED":         StatusCancelled,
	"QUERY_STATE_EXPIRED":           StatusExpired,
	"QUERY_STATE_COMPLETED_PARTIAL": StatusCompletedPartial,
}

var statusNames = map[ExecutionStatus]string{
	StatusPending:          "QUERY_STATE_PENDING",
	StatusExecuting:        "QUERY_STATE_EXECUTING",
	StatusFailed:           "QUERY_STATE_FAILED",
	StatusCompleted:        "QUERY_STATE_COMPLETED",
	StatusCancelled:        "QUERY_STATE_CANCELLED",
	StatusExpired:          "QUERY_STATE_EXPIRED",
	StatusCompletedPartial: "QUERY_STATE_COMPLETED_PARTIAL",
}

// ParseStatus converts a wire token into an ExecutionStatus.
func ParseStatus(token string) (ExecutionStatus, error) {
	status, ok := statusTokens[token]
	if !ok {
		return 0, fmt.Errorf("unknown execution status token %q", token)
	}
	return status, nil
}

// String returns the wire token for the status.
func (s ExecutionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ExecutionStatus(%d)", int(s))
}

// IsTerminal reports whether the execution will not transition further.
// Only Pending and Executing are non-terminal.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusPending, StatusExecuting:
		return false
	default:
		return true
	}
}

// CanFetchResults reports whether results may be paginated from this
// status. Completed and CompletedPartial are the only such statuses.
func (s ExecutionStatus) CanFetchResults() bool {
	return s == StatusCompleted || s == StatusCompletedPartial
}

// UnmarshalJSON decodes a status token, rejecting anything outside the
// documented set.
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}

	status, err := ParseStatus(token)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// MarshalJSON encodes the status as its wire token.
func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid execution status %d", int(s))
	}
	return json.Marshal(name)
}
