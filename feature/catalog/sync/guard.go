package sync

import (
	"context"
	"time"
)

// guard is the duplicate-sync check: a phase that completed a full pass within
// the freshness window is skipped instead of re-fetched, unless the run was
// forced.
type guard struct {
	catalog Catalog
	window  time.Duration
}

// shouldSkip reports whether the phase is still fresh. force bypasses the
// check entirely.
func (g guard) shouldSkip(ctx context.Context, gameID uint, phase string, force bool) (bool, error) {
	if force || g.window <= 0 {
		return false, nil
	}
	completed, err := g.catalog.LastCheckpoint(ctx, gameID, phase)
	if err != nil {
		return false, err
	}
	if completed == nil {
		return false, nil
	}
	return time.Since(*completed) < g.window, nil
}
