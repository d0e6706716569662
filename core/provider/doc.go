// Package provider implements the client for the remote card-catalog API.
//
// It bundles the three concerns every remote call needs:
//
//  1. Resilient fetch: per-attempt timeouts, exponential backoff with jitter,
//     Retry-After honoring on 429, and a strict no-retry policy for other 4xx
//     responses (those indicate a contract violation, not a transient fault).
//  2. Envelope normalization: the API wraps collections under varying keys
//     (data, sets, results, ...) and serializes ids inconsistently; everything
//     is decoded into one canonical Item/Page shape at this boundary.
//  3. Pagination: a lazy, finite, resumable cursor iterator that shares the
//     process-wide rate limiter with every other outbound call.
//
// The client never interprets catalog semantics; matching, rollback and
// persistence live in feature/catalog.
package provider
