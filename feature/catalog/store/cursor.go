package store

import (
	"context"
	"errors"
	"fmt"

	"cardstock/core/provider"
	"cardstock/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCursor returns the persisted pagination cursor for one
// (provider, game, entity type) stream. A stream without a saved cursor
// starts from the beginning with an empty string.
func (s *Store) GetCursor(ctx context.Context, gameID uint, et provider.EntityType) (string, error) {
	var row models.SyncCursor
	err := s.db.WithContext(ctx).
		Where("provider = ? AND game_id = ? AND entity_type = ?", s.providerName, gameID, string(et)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load cursor: %w", err)
	}
	return row.Cursor, nil
}

// SetCursor persists the cursor for one stream. Callers must only invoke this
// after the page behind the cursor has been durably upserted; writing the
// cursor first would make a crash skip data.
func (s *Store) SetCursor(ctx context.Context, gameID uint, et provider.EntityType, cursor string) error {
	row := models.SyncCursor{
		Provider:   s.providerName,
		GameID:     gameID,
		EntityType: string(et),
		Cursor:     cursor,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "game_id"}, {Name: "entity_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"cursor", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

// ResetCursor clears one stream's cursor so the next run starts from the top.
func (s *Store) ResetCursor(ctx context.Context, gameID uint, et provider.EntityType) error {
	return s.SetCursor(ctx, gameID, et, "")
}

// Cursors lists every persisted cursor for this provider.
func (s *Store) Cursors(ctx context.Context) ([]models.SyncCursor, error) {
	var rows []models.SyncCursor
	err := s.db.WithContext(ctx).
		Where("provider = ?", s.providerName).
		Order("game_id asc, entity_type asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}
	return rows, nil
}

// DropCursors deletes every cursor for this provider. Used by the CLI to
// force a clean full sync.
func (s *Store) DropCursors(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("provider = ?", s.providerName).
		Delete(&models.SyncCursor{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to drop cursors: %w", res.Error)
	}
	return res.RowsAffected, nil
}
