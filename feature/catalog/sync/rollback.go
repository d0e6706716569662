package sync

import (
	"context"

	"cardstock/core/provider"
	"cardstock/feature/catalog/match"

	"go.uber.org/zap"
)

// auditRollback scans the already-linked entities under one parent and clears
// every provider id that no longer exists in the freshly fetched collection.
// It runs only after a full pass, so an absent id really is gone upstream and
// not just on a page that was never fetched.
func (o *Orchestrator) auditRollback(ctx context.Context, et provider.EntityType, parentID uint, ix *match.Index) (int64, error) {
	linked, err := o.catalog.WithProviderID(ctx, et, parentID)
	if err != nil {
		return 0, err
	}

	var stale []uint
	for _, row := range linked {
		if row.ProviderID == nil || *row.ProviderID == "" {
			continue
		}
		if !ix.HasID(*row.ProviderID) {
			stale = append(stale, row.LocalID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	cleared, err := o.catalog.ClearProviderIDs(ctx, et, stale)
	if err != nil {
		return 0, err
	}
	o.logger.Warn("Rolled back stale provider links",
		zap.String("entity_type", string(et)),
		zap.Uint("parent_id", parentID),
		zap.Int64("cleared", cleared),
	)
	return cleared, nil
}
