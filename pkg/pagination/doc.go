// Package pagination reassembles complete result sets from the Dune
// API's offset-based result pages.
//
// The server returns results in fixed-size pages; each response carries
// the offset of the next page or omits it when the set is exhausted.
// The fetcher walks that cursor sequentially and concatenates rows in
// offset order:
//
//	fetcher := pagination.NewFetcher(duneClient)
//	result, err := fetcher.FetchAll(ctx, client.ExecutionTarget(id), pagination.Options{})
//
// Peek mode short-circuits after the first page, returning metadata plus
// a partial row batch for quick inspection.
//
// The fetcher never waits for an execution to finish; callers poll the
// execution's status first (see pkg/poller). A next offset that fails to
// advance the cursor is treated as a protocol error rather than risking
// an infinite loop.
package pagination
