// Package store persists the local catalog mirror and all sync bookkeeping:
// entity upserts keyed on (provider, provider_id), pagination cursors, run
// records and phase checkpoints.
package store
