package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardstock/feature/catalog/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("sync run not found")

// CreateRun records a new queued sync run and returns it.
func (s *Store) CreateRun(ctx context.Context, scope string, games []string) (*models.SyncRun, error) {
	run := models.SyncRun{
		ID:       uuid.NewString(),
		Provider: s.providerName,
		Scope:    scope,
		Games:    strings.Join(games, ","),
		Status:   models.RunQueued,
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}
	return &run, nil
}

// StartRun transitions a queued run to running.
func (s *Store) StartRun(ctx context.Context, id string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", id, models.RunQueued).
		Updates(map[string]any{"status": models.RunRunning, "started_at": &now})
	if res.Error != nil {
		return fmt.Errorf("failed to start sync run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run %s is not queued", id)
	}
	return nil
}

// UpdateProgress updates the processed and total entity counters of a run.
func (s *Store) UpdateProgress(ctx context.Context, id string, processed, total int) error {
	err := s.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("id = ?", id).
		Updates(map[string]any{"processed": processed, "total": total}).Error
	if err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	return nil
}

// CompleteRun moves a run into a terminal status and stores its outcome.
func (s *Store) CompleteRun(ctx context.Context, id, status, results, metrics, errMsg string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"results":       results,
			"metrics":       metrics,
			"error_message": errMsg,
			"finished_at":   &now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete sync run: %w", err)
	}
	return nil
}

// Run returns one run by id.
func (s *Store) Run(ctx context.Context, id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync run: %w", err)
	}
	return &run, nil
}

// Runs lists the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).
		Where("provider = ?", s.providerName).
		Order("created_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

// ActiveRun returns the queued or running run for this provider, if any.
func (s *Store) ActiveRun(ctx context.Context) (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.WithContext(ctx).
		Where("provider = ? AND status IN ?", s.providerName,
			[]string{models.RunQueued, models.RunRunning}).
		Order("created_at desc").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active run: %w", err)
	}
	return &run, nil
}

// SaveCheckpoint records that one phase of one game finished a full pass.
func (s *Store) SaveCheckpoint(ctx context.Context, gameID uint, phase string) error {
	row := models.SyncCheckpoint{
		Provider:    s.providerName,
		GameID:      gameID,
		Phase:       phase,
		CompletedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "game_id"}, {Name: "phase"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LastCheckpoint returns when one phase of one game last completed, or nil if
// it never has.
func (s *Store) LastCheckpoint(ctx context.Context, gameID uint, phase string) (*time.Time, error) {
	var row models.SyncCheckpoint
	err := s.db.WithContext(ctx).
		Where("provider = ? AND game_id = ? AND phase = ?", s.providerName, gameID, phase).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	t := row.CompletedAt
	return &t, nil
}
