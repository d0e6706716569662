package models

import "time"

// Run states for a sync run. Terminal states are completed, failed, cancelled.
const (
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// Game is a top-level catalog entity (e.g. a trading card game line).
// Code is the local short code used to address the game on the provider API.
type Game struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:120" json:"name"`
	Code      string    `gorm:"column:code;size:32;uniqueIndex" json:"code"`
	Provider  string    `gorm:"column:provider;size:64" json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Game) TableName() string { return "games" }

// Set is a card set within a game. ProviderID is nullable until the set has
// been matched to (or discovered from) a remote record; when non-null it must
// reference a record that exists in the provider's current collection, which
// the rollback auditor enforces.
type Set struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	GameID     uint      `gorm:"column:game_id;index" json:"game_id"`
	Name       string    `gorm:"column:name;size:255" json:"name"`
	Code       string    `gorm:"column:code;size:32;index" json:"code,omitempty"`
	Provider   string    `gorm:"column:provider;size:64;uniqueIndex:idx_sets_provider_remote" json:"provider,omitempty"`
	ProviderID *string   `gorm:"column:provider_id;size:64;uniqueIndex:idx_sets_provider_remote" json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Set) TableName() string { return "card_sets" }

// Card is a single card within a set. Code holds the collector number.
type Card struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	SetID      uint      `gorm:"column:set_id;index" json:"set_id"`
	Name       string    `gorm:"column:name;size:255" json:"name"`
	Code       string    `gorm:"column:code;size:32" json:"code,omitempty"`
	Rarity     string    `gorm:"column:rarity;size:64" json:"rarity,omitempty"`
	Provider   string    `gorm:"column:provider;size:64;uniqueIndex:idx_cards_provider_remote" json:"provider,omitempty"`
	ProviderID *string   `gorm:"column:provider_id;size:64;uniqueIndex:idx_cards_provider_remote" json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Card) TableName() string { return "cards" }

// Variant is a sellable printing/finish of a card (foil, 1st edition, ...).
type Variant struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	CardID     uint      `gorm:"column:card_id;index" json:"card_id"`
	Name       string    `gorm:"column:name;size:255" json:"name"`
	Code       string    `gorm:"column:code;size:32" json:"code,omitempty"`
	Provider   string    `gorm:"column:provider;size:64;uniqueIndex:idx_variants_provider_remote" json:"provider,omitempty"`
	ProviderID *string   `gorm:"column:provider_id;size:64;uniqueIndex:idx_variants_provider_remote" json:"provider_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Variant) TableName() string { return "card_variants" }

// SyncCursor persists the resume point of one paginated stream, keyed by
// (provider, game, entity type). It is created on the first page fetched,
// overwritten after every successfully upserted page, and reset only when a
// phase completes or an operator resets it explicitly. The orchestrator is the
// sole writer for a key.
type SyncCursor struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	Provider   string    `gorm:"column:provider;size:64;uniqueIndex:idx_cursor_key" json:"provider"`
	GameID     uint      `gorm:"column:game_id;uniqueIndex:idx_cursor_key" json:"game_id"`
	EntityType string    `gorm:"column:entity_type;size:16;uniqueIndex:idx_cursor_key" json:"entity_type"`
	Cursor     string    `gorm:"column:cursor;size:512" json:"cursor"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SyncCursor) TableName() string { return "sync_cursors" }

// SyncRun records one orchestrated sync execution. Mutated only by the
// orchestrator; terminal once completed, failed or cancelled.
type SyncRun struct {
	ID           string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Provider     string     `gorm:"column:provider;size:64" json:"provider"`
	Scope        string     `gorm:"column:scope;size:255" json:"scope"`
	Games        string     `gorm:"column:games;size:512" json:"games,omitempty"`
	Status       string     `gorm:"column:status;size:16;index" json:"status"`
	Processed    int        `gorm:"column:processed" json:"processed"`
	Total        int        `gorm:"column:total" json:"total"`
	ErrorMessage string     `gorm:"column:error_message;size:1024" json:"error_message,omitempty"`
	Results      string     `gorm:"column:results;type:text" json:"results,omitempty"`
	Metrics      string     `gorm:"column:metrics;type:text" json:"metrics,omitempty"`
	StartedAt    *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// Terminal reports whether the run has reached a terminal state.
func (r SyncRun) Terminal() bool {
	switch r.Status {
	case RunCompleted, RunFailed, RunCancelled:
		return true
	}
	return false
}

// SyncCheckpoint records the last successful completion of one phase for one
// game. The duplicate-sync guard reads it; the orchestrator upserts it when a
// phase finishes cleanly.
type SyncCheckpoint struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Provider    string    `gorm:"column:provider;size:64;uniqueIndex:idx_checkpoint_key" json:"provider"`
	GameID      uint      `gorm:"column:game_id;uniqueIndex:idx_checkpoint_key" json:"game_id"`
	Phase       string    `gorm:"column:phase;size:16;uniqueIndex:idx_checkpoint_key" json:"phase"`
	CompletedAt time.Time `gorm:"column:completed_at" json:"completed_at"`
}

func (SyncCheckpoint) TableName() string { return "sync_checkpoints" }

// CatalogRow is the lightweight projection of one catalog entity used by the
// matcher and the rollback auditor. LocalID is the locally generated stable
// identifier, never the provider's.
type CatalogRow struct {
	LocalID    uint
	ParentID   uint
	Name       string
	Code       string
	ProviderID *string
}
