package sync

import (
	"context"
	"time"

	"cardstock/core/provider"
	"cardstock/feature/catalog/models"
	"cardstock/feature/catalog/store"
)

// CatalogAPI is the slice of the provider client the orchestrator drives.
type CatalogAPI interface {
	Name() string
	Scope() string
	ListSets(ctx context.Context, gameCode, cursor string) (provider.Page, error)
	ListCards(ctx context.Context, gameCode, setID, cursor string) (provider.Page, error)
	ListVariants(ctx context.Context, gameCode, cardID, cursor string) (provider.Page, error)
}

// Catalog is the persistence surface the orchestrator writes through. The
// store package implements it; tests substitute an in-memory fake.
type Catalog interface {
	Games(ctx context.Context, codes []string) ([]models.Game, error)
	MissingProviderID(ctx context.Context, et provider.EntityType, parentID uint) ([]models.CatalogRow, error)
	WithProviderID(ctx context.Context, et provider.EntityType, parentID uint) ([]models.CatalogRow, error)
	RemoteItems(ctx context.Context, et provider.EntityType, parentID uint) ([]provider.Item, error)
	LinkedSets(ctx context.Context, gameID uint) ([]models.Set, error)
	LinkedCards(ctx context.Context, setID uint) ([]models.Card, error)
	ClearProviderIDs(ctx context.Context, et provider.EntityType, localIDs []uint) (int64, error)
	UpsertRemote(ctx context.Context, et provider.EntityType, parentID uint, items []provider.Item, chunkSize int) (int64, error)
	ApplyMatches(ctx context.Context, et provider.EntityType, links []store.Link, chunkSize int) (int64, error)

	GetCursor(ctx context.Context, gameID uint, et provider.EntityType) (string, error)
	SetCursor(ctx context.Context, gameID uint, et provider.EntityType, cursor string) error
	ResetCursor(ctx context.Context, gameID uint, et provider.EntityType) error

	StartRun(ctx context.Context, id string) error
	UpdateProgress(ctx context.Context, id string, processed, total int) error
	CompleteRun(ctx context.Context, id, status, results, metrics, errMsg string) error
	SaveCheckpoint(ctx context.Context, gameID uint, phase string) error
	LastCheckpoint(ctx context.Context, gameID uint, phase string) (*time.Time, error)
}
