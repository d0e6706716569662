package store

import (
	"context"
	"fmt"

	"cardstock/core/provider"
	"cardstock/feature/catalog/models"

	"gorm.io/gorm"
)

// Store is the persistence layer for the local catalog mirror. All writes the
// sync engine issues (entity upserts, cursor updates, run tracking) go through
// it; each write is transactional at chunk granularity, never across a whole
// phase.
type Store struct {
	db           *gorm.DB
	providerName string
}

// New creates a store bound to one provider name. The provider name scopes
// cursors, checkpoints and the (provider, provider_id) upsert key.
func New(db *gorm.DB, providerName string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store requires a database connection")
	}
	if providerName == "" {
		return nil, fmt.Errorf("store requires a provider name")
	}
	return &Store{db: db, providerName: providerName}, nil
}

// Migrate creates or updates the catalog tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.Game{},
		&models.Set{},
		&models.Card{},
		&models.Variant{},
		&models.SyncCursor{},
		&models.SyncRun{},
		&models.SyncCheckpoint{},
	)
}

// Provider returns the provider name this store is bound to.
func (s *Store) Provider() string {
	return s.providerName
}

// tableFor maps an entity type to its table and parent foreign key column.
func tableFor(et provider.EntityType) (table, parentCol string, err error) {
	switch et {
	case provider.EntitySets:
		return models.Set{}.TableName(), "game_id", nil
	case provider.EntityCards:
		return models.Card{}.TableName(), "set_id", nil
	case provider.EntityVariants:
		return models.Variant{}.TableName(), "card_id", nil
	default:
		return "", "", fmt.Errorf("unsupported entity type %q", et)
	}
}

// Games returns the games addressed by the given local codes, or all games
// when codes is empty.
func (s *Store) Games(ctx context.Context, codes []string) ([]models.Game, error) {
	var games []models.Game
	q := s.db.WithContext(ctx).Order("code asc")
	if len(codes) > 0 {
		q = q.Where("code IN ?", codes)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return games, nil
}

// MissingProviderID returns the entities of one level under one parent that
// have no provider identifier yet. These are the matcher's input.
func (s *Store) MissingProviderID(ctx context.Context, et provider.EntityType, parentID uint) ([]models.CatalogRow, error) {
	return s.rows(ctx, et, parentID, "provider_id IS NULL")
}

// WithProviderID returns the entities of one level under one parent that
// already carry a provider identifier. The rollback auditor scans these.
func (s *Store) WithProviderID(ctx context.Context, et provider.EntityType, parentID uint) ([]models.CatalogRow, error) {
	return s.rows(ctx, et, parentID, "provider_id IS NOT NULL")
}

func (s *Store) rows(ctx context.Context, et provider.EntityType, parentID uint, cond string) ([]models.CatalogRow, error) {
	table, parentCol, err := tableFor(et)
	if err != nil {
		return nil, err
	}

	var out []models.CatalogRow
	err = s.db.WithContext(ctx).
		Table(table).
		Select(fmt.Sprintf("id AS local_id, %s AS parent_id, name, code, provider_id", parentCol)).
		Where(parentCol+" = ?", parentID).
		Where(cond).
		Order("id asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s rows: %w", et, err)
	}
	return out, nil
}

// RemoteItems reconstructs the already-fetched portion of a remote collection
// from the local mirror. A resumed run merges these with newly fetched pages
// so the canonical index always covers the full collection.
func (s *Store) RemoteItems(ctx context.Context, et provider.EntityType, parentID uint) ([]provider.Item, error) {
	table, parentCol, err := tableFor(et)
	if err != nil {
		return nil, err
	}

	type remoteRow struct {
		ProviderID string
		Name       string
		Code       string
	}
	var rows []remoteRow
	err = s.db.WithContext(ctx).
		Table(table).
		Select("provider_id, name, code").
		Where(parentCol+" = ?", parentID).
		Where("provider = ? AND provider_id IS NOT NULL", s.providerName).
		Order("provider_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mirrored %s items: %w", et, err)
	}

	items := make([]provider.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, provider.Item{ID: r.ProviderID, Name: r.Name, Code: r.Code})
	}
	return items, nil
}

// LinkedSets returns the sets of a game that are linked to the provider,
// ordered by remote id for deterministic per-parent traversal.
func (s *Store) LinkedSets(ctx context.Context, gameID uint) ([]models.Set, error) {
	var sets []models.Set
	err := s.db.WithContext(ctx).
		Where("game_id = ? AND provider = ? AND provider_id IS NOT NULL", gameID, s.providerName).
		Order("provider_id asc").
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load linked sets: %w", err)
	}
	return sets, nil
}

// LinkedCards returns the provider-linked cards of a set, ordered by remote id.
func (s *Store) LinkedCards(ctx context.Context, setID uint) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Where("set_id = ? AND provider = ? AND provider_id IS NOT NULL", setID, s.providerName).
		Order("provider_id asc").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load linked cards: %w", err)
	}
	return cards, nil
}

// ClearProviderIDs nulls the provider link on the given local entities and
// returns how many rows changed. Used by the rollback auditor.
func (s *Store) ClearProviderIDs(ctx context.Context, et provider.EntityType, localIDs []uint) (int64, error) {
	if len(localIDs) == 0 {
		return 0, nil
	}
	table, _, err := tableFor(et)
	if err != nil {
		return 0, err
	}

	res := s.db.WithContext(ctx).
		Table(table).
		Where("id IN ?", localIDs).
		Updates(map[string]any{"provider": "", "provider_id": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear provider ids: %w", res.Error)
	}
	return res.RowsAffected, nil
}
