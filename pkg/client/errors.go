package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client failures. Every failure at this layer is
// surfaced to the immediate caller; nothing is retried.
type ErrorKind string

const (
	// ErrorKindRequest represents a transport-level failure or a non-2xx
	// response from the server.
	ErrorKindRequest ErrorKind = "request"

	// ErrorKindParse represents a response body that does not decode into
	// the expected shape, including unknown status tokens.
	ErrorKindParse ErrorKind = "parse"

	// ErrorKindEncoding represents a failure to serialize outbound
	// parameters.
	ErrorKindEncoding ErrorKind = "encoding"

	// ErrorKindQueryNotFinished means pagination was attempted before the
	// server reported completion.
	ErrorKindQueryNotFinished ErrorKind = "query_not_finished"

	// ErrorKindQueryStatus means the execution reached a terminal failure
	// status (Failed, Cancelled or Expired).
	ErrorKindQueryStatus ErrorKind = "query_status"

	// ErrorKindProtocol represents a server response that violates the
	// pagination contract, such as a non-increasing next offset.
	ErrorKindProtocol ErrorKind = "protocol"
)

// Sentinel errors for guard conditions.
var (
	// ErrQueryNotFinished is wrapped by errors of kind query_not_finished.
	ErrQueryNotFinished = errors.New("query execution not finished")

	// ErrOffsetRegression is wrapped by errors of kind protocol when the
	// server returns a next offset that does not advance the cursor.
	ErrOffsetRegression = errors.New("next offset does not advance pagination cursor")
)

// Error is the error type returned by all client operations.
type Error struct {
	Kind       ErrorKind
	StatusCode int             // HTTP status, for request errors
	Status     ExecutionStatus // terminal status, for query_status errors
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == ErrorKindQueryStatus:
		return fmt.Sprintf("dune %s error: execution ended with status %s", e.Kind, e.Status)
	case e.StatusCode != 0:
		return fmt.Sprintf("dune %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("dune %s error: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("dune %s error: %s", e.Kind, e.Message)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// StatusOf extracts the terminal status from a query_status error. The
// second return is false for any other error.
func StatusOf(err error) (ExecutionStatus, bool) {
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == ErrorKindQueryStatus {
		return ce.Status, true
	}
	return 0, false
}

func newRequestError(statusCode int, message string, err error) *Error {
	return &Error{Kind: ErrorKindRequest, StatusCode: statusCode, Message: message, Err: err}
}

func newParseError(message string, err error) *Error {
	return &Error{Kind: ErrorKindParse, Message: message, Err: err}
}

func newEncodingError(message string, err error) *Error {
	return &Error{Kind: ErrorKindEncoding, Message: message, Err: err}
}

// NewQueryNotFinishedError builds the error returned when results are
// requested for an execution the server has not finished.
func NewQueryNotFinishedError(executionID string) *Error {
	return &Error{
		Kind:    ErrorKindQueryNotFinished,
		Message: fmt.Sprintf("execution %s has not finished; poll its status first", executionID),
		Err:     ErrQueryNotFinished,
	}
}

// NewQueryStatusError builds the error returned when an execution reaches
// a terminal failure status.
func NewQueryStatusError(status ExecutionStatus) *Error {
	return &Error{Kind: ErrorKindQueryStatus, Status: status}
}

// NewOffsetRegressionError builds the protocol error raised when a page
// response carries a next offset at or below the current cursor.
func NewOffsetRegressionError(current, next uint64) *Error {
	return &Error{
		Kind:    ErrorKindProtocol,
		Message: fmt.Sprintf("server returned next_offset %d at or below current offset %d", next, current),
		Err:     ErrOffsetRegression,
	}
}
