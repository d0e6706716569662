package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cardstock/core/storage"

	"github.com/minio/minio-go/v7"
)

// PhaseStats tallies what one phase of one game did.
type PhaseStats struct {
	Fetched    int   `json:"fetched"`
	Written    int64 `json:"written"`
	Matched    int   `json:"matched"`
	Unmatched  int   `json:"unmatched"`
	Conflicts  int   `json:"conflicts"`
	OutOfScope int   `json:"out_of_scope"`
	RolledBack int64 `json:"rolled_back"`
	Skipped    bool  `json:"skipped,omitempty"`
}

func (p *PhaseStats) add(other PhaseStats) {
	p.Fetched += other.Fetched
	p.Written += other.Written
	p.Matched += other.Matched
	p.Unmatched += other.Unmatched
	p.Conflicts += other.Conflicts
	p.OutOfScope += other.OutOfScope
	p.RolledBack += other.RolledBack
}

// GameReport aggregates the phase outcomes for one game.
type GameReport struct {
	Game   string                `json:"game"`
	Phases map[string]PhaseStats `json:"phases"`
}

// RunReport is the archived record of one sync run.
type RunReport struct {
	RunID      string       `json:"run_id"`
	Provider   string       `json:"provider"`
	Scope      string       `json:"scope"`
	Status     string       `json:"status"`
	Games      []GameReport `json:"games"`
	Totals     PhaseStats   `json:"totals"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Error      string       `json:"error,omitempty"`
}

// Archiver uploads finished run reports to object storage for later audit.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
}

// NewArchiver creates an archiver writing under prefix in bucket.
func NewArchiver(client storage.Client, bucket, prefix string) *Archiver {
	if prefix == "" {
		prefix = "reports"
	}
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Archive uploads one report as JSON, creating the bucket on first use. The
// report lands at <prefix>/<provider>/<run id>.json.
func (a *Archiver) Archive(ctx context.Context, report RunReport) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check report bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create report bucket: %w", err)
		}
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, report.Provider, report.RunID)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload run report: %w", err)
	}
	return nil
}
