package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardstock/core/provider"
	"cardstock/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Link connects one local entity to one remote record.
type Link struct {
	LocalID  uint
	RemoteID string
}

// providerIDKey is the natural key every remote upsert is idempotent on.
var providerIDKey = []clause.Column{{Name: "provider"}, {Name: "provider_id"}}

// UpsertRemote writes freshly fetched remote items into the local mirror in
// chunks, keyed on (provider, provider_id) so replays after a crash or resume
// are idempotent. When a chunk fails on a constraint violation the rows are
// retried one by one so a single bad row does not sink the whole chunk.
// Returns the number of rows written.
func (s *Store) UpsertRemote(ctx context.Context, et provider.EntityType, parentID uint, items []provider.Item, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = 50
	}

	switch et {
	case provider.EntitySets:
		return upsertChunks(ctx, s.db, s.setRows(parentID, items), chunkSize, "name", "code")
	case provider.EntityCards:
		return upsertChunks(ctx, s.db, s.cardRows(parentID, items), chunkSize, "name", "code", "rarity")
	case provider.EntityVariants:
		return upsertChunks(ctx, s.db, s.variantRows(parentID, items), chunkSize, "name")
	default:
		return 0, fmt.Errorf("unsupported entity type %q", et)
	}
}

func (s *Store) setRows(gameID uint, items []provider.Item) []models.Set {
	rows := make([]models.Set, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		id := it.ID
		rows = append(rows, models.Set{
			GameID:     gameID,
			Name:       it.Name,
			Code:       it.Code,
			Provider:   s.providerName,
			ProviderID: &id,
		})
	}
	return rows
}

func (s *Store) cardRows(setID uint, items []provider.Item) []models.Card {
	rows := make([]models.Card, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		id := it.ID
		rows = append(rows, models.Card{
			SetID:      setID,
			Name:       it.Name,
			Code:       it.Number,
			Rarity:     it.Rarity,
			Provider:   s.providerName,
			ProviderID: &id,
		})
	}
	return rows
}

func (s *Store) variantRows(cardID uint, items []provider.Item) []models.Variant {
	rows := make([]models.Variant, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		id := it.ID
		rows = append(rows, models.Variant{
			CardID:     cardID,
			Name:       it.Name,
			Provider:   s.providerName,
			ProviderID: &id,
		})
	}
	return rows
}

func upsertChunks[T any](ctx context.Context, db *gorm.DB, rows []T, chunkSize int, updateCols ...string) (int64, error) {
	onConflict := clause.OnConflict{
		Columns:   providerIDKey,
		DoUpdates: clause.AssignmentColumns(append(updateCols, "updated_at")),
	}

	var written int64
	for start := 0; start < len(rows); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		res := db.WithContext(ctx).Clauses(onConflict).Create(&chunk)
		if res.Error == nil {
			written += res.RowsAffected
			continue
		}
		if !isConstraintErr(res.Error) {
			return written, fmt.Errorf("failed to upsert chunk: %w", res.Error)
		}

		// One row in the chunk trips a secondary unique key. Replay the rows
		// singly so the rest of the chunk still lands.
		for i := range chunk {
			row := chunk[i]
			single := db.WithContext(ctx).Clauses(onConflict).Create(&row)
			if single.Error == nil {
				written += single.RowsAffected
				continue
			}
			if isConstraintErr(single.Error) {
				continue
			}
			return written, fmt.Errorf("failed to upsert row: %w", single.Error)
		}
	}
	return written, nil
}

// ApplyMatches writes accepted match decisions in chunks, each chunk inside
// one transaction. Unlike discovery upserts, a failed write here aborts
// immediately: a partially applied decision batch must surface as a run
// failure rather than be papered over.
func (s *Store) ApplyMatches(ctx context.Context, et provider.EntityType, links []Link, chunkSize int) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	if chunkSize <= 0 {
		chunkSize = 50
	}
	table, _, err := tableFor(et)
	if err != nil {
		return 0, err
	}

	var applied int64
	for start := 0; start < len(links); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		end := start + chunkSize
		if end > len(links) {
			end = len(links)
		}
		chunk := links[start:end]

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, l := range chunk {
				id := l.RemoteID
				res := tx.Table(table).
					Where("id = ?", l.LocalID).
					Updates(map[string]any{"provider": s.providerName, "provider_id": &id})
				if res.Error != nil {
					return res.Error
				}
				applied += res.RowsAffected
			}
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply match chunk: %w", err)
		}
	}
	return applied, nil
}

func isConstraintErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}
