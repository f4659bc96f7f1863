package client

import "strings"

// ResultsFilter is an ordered collection of raw filter expressions of the
// form "<column> <operator> <literal>". Expressions are passed to the
// server verbatim; the server is the sole validator. When more than one
// expression is present they are joined with AND, in insertion order.
type ResultsFilter struct {
	exprs []string
}

// NewResultsFilter returns an empty filter.
func NewResultsFilter() ResultsFilter {
	return ResultsFilter{}
}

// Add appends a raw filter expression and returns the filter, so calls
// can be chained.
func (f ResultsFilter) Add(expr string) ResultsFilter {
	f.exprs = append(f.exprs, expr)
	return f
}

// IsEmpty reports whether no expressions have been added.
func (f ResultsFilter) IsEmpty() bool {
	return len(f.exprs) == 0
}

// Encode serializes the filter for the wire. An empty filter encodes to
// the empty string, meaning no filter parameter at all.
func (f ResultsFilter) Encode() string {
	return strings.Join(f.exprs, " AND ")
}
