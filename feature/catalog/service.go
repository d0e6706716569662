package catalog

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"cardstock/feature/catalog/models"
	"cardstock/feature/catalog/sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrRunNotCancellable is returned when a cancel request addresses a run that
// already reached a terminal state.
var ErrRunNotCancellable = errors.New("run is not cancellable")

// Service owns sync run lifecycle: triggering, progress queries and
// cancellation. One run at a time per provider; concurrent triggers collapse
// onto the active run.
type Service struct {
	api     sync.CatalogAPI
	catalog sync.Catalog
	runs    RunStore
	archive *sync.Archiver
	cfg     sync.Config
	logger  *zap.Logger

	triggers singleflight.Group
	mu       gosync.Mutex
	cancels  map[string]context.CancelFunc
}

// RunStore is the slice of the store the service reads runs through.
type RunStore interface {
	CreateRun(ctx context.Context, scope string, games []string) (*models.SyncRun, error)
	ActiveRun(ctx context.Context) (*models.SyncRun, error)
	Run(ctx context.Context, id string) (*models.SyncRun, error)
	Runs(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// NewService creates the catalog sync service. archive may be nil.
func NewService(api sync.CatalogAPI, catalog sync.Catalog, runs RunStore, archive *sync.Archiver, cfg sync.Config, logger *zap.Logger) *Service {
	return &Service{
		api:     api,
		catalog: catalog,
		runs:    runs,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
		cancels: map[string]context.CancelFunc{},
	}
}

// TriggerSync starts a sync run in the background and returns its record.
// When a run is already queued or running that run is returned instead;
// created reports which case happened. Concurrent triggers are collapsed so
// a double-clicked button cannot start two runs.
func (s *Service) TriggerSync(ctx context.Context, games []string, force bool) (run *models.SyncRun, created bool, err error) {
	type outcome struct {
		run     *models.SyncRun
		created bool
	}
	v, err, _ := s.triggers.Do("trigger", func() (any, error) {
		active, err := s.runs.ActiveRun(ctx)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return outcome{run: active}, nil
		}

		run, err := s.runs.CreateRun(ctx, s.api.Scope(), games)
		if err != nil {
			return nil, err
		}
		s.launch(run, games, force)
		return outcome{run: run, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(outcome)
	return out.run, out.created, nil
}

// launch starts the orchestrator in the background. The run context is
// detached from the HTTP request and lives until the run terminates or an
// operator cancels it.
func (s *Service) launch(run *models.SyncRun, games []string, force bool) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[run.ID] = cancel
	s.mu.Unlock()

	orch := sync.NewOrchestrator(s.api, s.catalog, s.archive, s.cfg, s.logger)
	go s.drainEvents(run.ID, orch.Events())
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, run.ID)
			s.mu.Unlock()
			cancel()
		}()
		if err := orch.Execute(ctx, run, sync.Options{Games: games, Force: force}); err != nil {
			s.logger.Error("Sync run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}()
}

// drainEvents logs orchestrator progress until the run's final event.
func (s *Service) drainEvents(runID string, events <-chan sync.Event) {
	for e := range events {
		s.logger.Info("Sync progress",
			zap.String("run_id", runID),
			zap.String("event", string(e.Type)),
			zap.String("game", e.Game),
			zap.String("phase", e.Phase),
		)
		if e.Type == sync.EventComplete {
			return
		}
	}
}

// CancelRun requests cancellation of a queued or running run. The run settles
// to cancelled at the next page boundary.
func (s *Service) CancelRun(ctx context.Context, id string) error {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	s.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	run, err := s.runs.Run(ctx, id)
	if err != nil {
		return err
	}
	if run.Terminal() {
		return fmt.Errorf("%w: status %s", ErrRunNotCancellable, run.Status)
	}
	// Queued or running but not owned by this process (e.g. after a restart).
	return fmt.Errorf("%w: run is not owned by this instance", ErrRunNotCancellable)
}

// Run returns one run by id.
func (s *Service) Run(ctx context.Context, id string) (*models.SyncRun, error) {
	return s.runs.Run(ctx, id)
}

// Runs lists recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.SyncRun, error) {
	return s.runs.Runs(ctx, limit)
}
