package sync

import "time"

// Config holds tuning for the sync orchestrator.
type Config struct {
	// ChunkSize bounds the number of rows per upsert chunk.
	ChunkSize int `mapstructure:"chunk_size" default:"50"`
	// FreshnessWindowMinutes is the duplicate-sync guard window: a phase is
	// skipped when a successful run for the same game completed within it.
	FreshnessWindowMinutes int `mapstructure:"freshness_window_minutes" default:"720"`
	// ReportPrefix is the object-key prefix for archived run reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
}

// FreshnessWindow returns the guard window as a duration.
func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowMinutes) * time.Minute
}

// EffectiveChunkSize returns the configured chunk size with a safe default.
func (c Config) EffectiveChunkSize() int {
	if c.ChunkSize <= 0 {
		return 50
	}
	return c.ChunkSize
}
