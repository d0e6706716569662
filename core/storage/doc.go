// Package storage provides the S3/MinIO client used to archive sync-run
// reports. The Client interface exposes only the operations the engine needs,
// which keeps handler and orchestrator tests on a lightweight mock instead of
// a live object store.
package storage
