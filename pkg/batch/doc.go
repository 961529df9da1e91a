// Package batch fetches many upstream resources in parallel through one
// cached client.
//
// MCP tools often need several independent upstream documents to answer one
// call (for example the timetable of every station on a route). The fetcher
// runs the requests with a bounded number of workers, keeps the input order
// in its results and records failures per request instead of aborting the
// whole batch.
//
// Example usage:
//
//	fetcher := batch.NewFetcher(httpClient, batch.DefaultConfig())
//	results, err := fetcher.FetchAll(ctx, []batch.Request{
//		{URL: "/v1/stationboard", Params: url.Values{"station": {"Bern"}}},
//		{URL: "/v1/stationboard", Params: url.Values{"station": {"Basel SBB"}}},
//	})
//	if err != nil {
//		return err // context cancelled
//	}
//	if err := results.Err(); err != nil {
//		// some requests failed; successful ones are still in results
//	}
//
// Because every request goes through the client, repeated requests are
// served from its cache and failures are retried with its backoff policy.
package batch
