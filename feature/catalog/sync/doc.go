// Package sync orchestrates catalog synchronization runs against the remote
// provider: paginated fetching with durable resume cursors, chunked idempotent
// upserts, exact-only identity matching, stale-link rollback and run
// bookkeeping with archived reports.
package sync
