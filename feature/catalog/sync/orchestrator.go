package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cardstock/core/provider"
	"cardstock/feature/catalog/match"
	"cardstock/feature/catalog/models"
	"cardstock/feature/catalog/store"

	"go.uber.org/zap"
)

// Options select what one run covers.
type Options struct {
	// Games restricts the run to these local game codes. Empty means all.
	Games []string
	// Force bypasses the duplicate-sync guard.
	Force bool
}

// Orchestrator executes sync runs. Phases run in strict order (sets, then
// cards, then variants), each phase visiting every game before the next phase
// starts. Every page is upserted before its cursor is persisted; after a
// collection is fully fetched, stale links are rolled back and unlinked local
// entities are matched against it.
type Orchestrator struct {
	api     CatalogAPI
	catalog Catalog
	archive *Archiver
	cfg     Config
	logger  *zap.Logger
	events  chan Event
}

// NewOrchestrator wires an orchestrator. archive may be nil to disable report
// uploads.
func NewOrchestrator(api CatalogAPI, catalog Catalog, archive *Archiver, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		api:     api,
		catalog: catalog,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
		events:  make(chan Event, 64),
	}
}

// Events exposes the progress stream. Events are dropped when nobody reads
// fast enough; the run never blocks on a slow consumer.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

func (o *Orchestrator) emit(e Event) {
	select {
	case o.events <- e:
	default:
	}
}

// Execute drives one queued run to a terminal state. The returned error is
// the run failure, already recorded on the run row; callers use it only for
// logging and exit codes.
func (o *Orchestrator) Execute(ctx context.Context, run *models.SyncRun, opts Options) error {
	if err := o.catalog.StartRun(ctx, run.ID); err != nil {
		return err
	}

	report := RunReport{
		RunID:     run.ID,
		Provider:  o.api.Name(),
		Scope:     o.api.Scope(),
		StartedAt: time.Now(),
	}

	games, err := o.catalog.Games(ctx, opts.Games)
	if err != nil {
		return o.finish(ctx, run, &report, err)
	}
	if len(opts.Games) > 0 && len(games) != len(opts.Games) {
		return o.finish(ctx, run, &report,
			fmt.Errorf("unknown game code in %v", opts.Games))
	}

	// Phases run in strict order across all games: every game's sets before
	// any game's cards, so child phases always walk freshly linked parents.
	reports := make([]GameReport, len(games))
	for i, game := range games {
		reports[i] = GameReport{Game: game.Code, Phases: map[string]PhaseStats{}}
	}
	report.Games = reports

	phases := []provider.EntityType{provider.EntitySets, provider.EntityCards, provider.EntityVariants}
	var processed int
	for _, et := range phases {
		for i, game := range games {
			var stats PhaseStats
			var err error
			if et == provider.EntitySets {
				stats, err = o.syncSets(ctx, run, game, opts.Force)
			} else {
				stats, err = o.syncChildren(ctx, run, game, et, opts.Force)
			}
			reports[i].Phases[string(et)] = stats
			report.Totals.add(stats)
			processed += stats.Fetched
			if uerr := o.catalog.UpdateProgress(ctx, run.ID, processed, processed); uerr != nil {
				o.logger.Warn("Failed to update run progress", zap.Error(uerr))
			}
			if err != nil {
				return o.finish(ctx, run, &report, err)
			}
			if et == provider.EntityVariants {
				o.emit(Event{Type: EventGameDone, RunID: run.ID, Game: game.Code, Processed: processed})
			}
		}
	}

	return o.finish(ctx, run, &report, nil)
}

// finish records the terminal state, archives the report and emits the final
// event. Cancellation is terminal but not a failure.
func (o *Orchestrator) finish(ctx context.Context, run *models.SyncRun, report *RunReport, runErr error) error {
	status := models.RunCompleted
	errMsg := ""
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		status = models.RunCancelled
		errMsg = "cancelled"
		runErr = nil
	default:
		status = models.RunFailed
		errMsg = runErr.Error()
	}

	report.Status = status
	report.Error = errMsg
	report.FinishedAt = time.Now()

	results, _ := json.Marshal(report.Games)
	metrics, _ := json.Marshal(report.Totals)

	// The run row must reach a terminal state even when the triggering request
	// is gone, so bookkeeping runs on a fresh context.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := o.catalog.CompleteRun(fctx, run.ID, status, string(results), string(metrics), errMsg); err != nil {
		o.logger.Error("Failed to record run completion", zap.String("run_id", run.ID), zap.Error(err))
	}
	if o.archive != nil {
		if err := o.archive.Archive(fctx, *report); err != nil {
			o.logger.Warn("Failed to archive run report", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	if runErr != nil {
		o.emit(Event{Type: EventError, RunID: run.ID, Message: errMsg})
	}
	o.emit(Event{Type: EventComplete, RunID: run.ID, Message: status})
	o.logger.Info("Sync run finished",
		zap.String("run_id", run.ID),
		zap.String("status", status),
	)
	return runErr
}

// syncSets fetches the full set collection of one game, upserting each page
// before saving its cursor, then reconciles and rolls back against the
// complete collection.
func (o *Orchestrator) syncSets(ctx context.Context, run *models.SyncRun, game models.Game, force bool) (PhaseStats, error) {
	var stats PhaseStats
	phase := string(provider.EntitySets)

	g := guard{catalog: o.catalog, window: o.cfg.FreshnessWindow()}
	skip, err := g.shouldSkip(ctx, game.ID, phase, force)
	if err != nil {
		return stats, err
	}
	if skip {
		stats.Skipped = true
		o.emit(Event{Type: EventGuardSkip, RunID: run.ID, Game: game.Code, Phase: phase})
		o.logger.Info("Phase fresh, skipping", zap.String("game", game.Code), zap.String("phase", phase))
		return stats, nil
	}

	o.emit(Event{Type: EventPhaseStart, RunID: run.ID, Game: game.Code, Phase: phase})

	cursor, err := o.catalog.GetCursor(ctx, game.ID, provider.EntitySets)
	if err != nil {
		return stats, err
	}

	// On resume the pages before the cursor are reconstructed from the local
	// mirror so the reconcile step still sees the whole collection.
	var items []provider.Item
	if cursor != "" {
		items, err = o.catalog.RemoteItems(ctx, provider.EntitySets, game.ID)
		if err != nil {
			return stats, err
		}
	}

	pag := provider.NewPaginator(func(ctx context.Context, c string) (provider.Page, error) {
		return o.api.ListSets(ctx, game.Code, c)
	}, cursor)

	for {
		page, ok, err := pag.Next(ctx)
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}

		written, err := o.catalog.UpsertRemote(ctx, provider.EntitySets, game.ID, page.Items, o.cfg.EffectiveChunkSize())
		if err != nil {
			return stats, err
		}
		if err := o.catalog.SetCursor(ctx, game.ID, provider.EntitySets, pag.Cursor()); err != nil {
			return stats, err
		}

		items = append(items, page.Items...)
		stats.Fetched += len(page.Items)
		stats.Written += written
		o.emit(Event{Type: EventPageUpserted, RunID: run.ID, Game: game.Code, Phase: phase, Written: written, Processed: stats.Fetched})
	}

	ix := match.NewIndex(items)
	if err := o.reconcile(ctx, provider.EntitySets, game.ID, ix, &stats); err != nil {
		return stats, err
	}

	if err := o.catalog.ResetCursor(ctx, game.ID, provider.EntitySets); err != nil {
		return stats, err
	}
	if err := o.catalog.SaveCheckpoint(ctx, game.ID, phase); err != nil {
		return stats, err
	}
	o.emit(Event{Type: EventPhaseDone, RunID: run.ID, Game: game.Code, Phase: phase})
	return stats, nil
}

// parentRef is one provider-linked parent whose children form an independent
// cursored collection.
type parentRef struct {
	localID  uint
	remoteID string
}

// syncChildren runs the cards or variants phase. Children page per parent, so
// the persisted cursor is "parentRemoteID|pageCursor" and parents are walked
// in remote-id order to make resumption deterministic.
func (o *Orchestrator) syncChildren(ctx context.Context, run *models.SyncRun, game models.Game, et provider.EntityType, force bool) (PhaseStats, error) {
	var stats PhaseStats
	phase := string(et)

	g := guard{catalog: o.catalog, window: o.cfg.FreshnessWindow()}
	skip, err := g.shouldSkip(ctx, game.ID, phase, force)
	if err != nil {
		return stats, err
	}
	if skip {
		stats.Skipped = true
		o.emit(Event{Type: EventGuardSkip, RunID: run.ID, Game: game.Code, Phase: phase})
		o.logger.Info("Phase fresh, skipping", zap.String("game", game.Code), zap.String("phase", phase))
		return stats, nil
	}

	o.emit(Event{Type: EventPhaseStart, RunID: run.ID, Game: game.Code, Phase: phase})

	parents, err := o.parentsFor(ctx, et, game)
	if err != nil {
		return stats, err
	}

	saved, err := o.catalog.GetCursor(ctx, game.ID, et)
	if err != nil {
		return stats, err
	}
	resumeParent, resumeCursor := splitCursor(saved)

	for i, p := range parents {
		// Parents before the resume point finished in an earlier run.
		if resumeParent != "" && p.remoteID < resumeParent {
			continue
		}

		startCursor := ""
		var items []provider.Item
		if p.remoteID == resumeParent && resumeCursor != "" {
			startCursor = resumeCursor
			items, err = o.catalog.RemoteItems(ctx, et, p.localID)
			if err != nil {
				return stats, err
			}
		}

		fetch := o.childFetch(et, game.Code, p.remoteID)
		pag := provider.NewPaginator(fetch, startCursor)

		for {
			page, ok, err := pag.Next(ctx)
			if err != nil {
				return stats, err
			}
			if !ok {
				break
			}

			written, err := o.catalog.UpsertRemote(ctx, et, p.localID, page.Items, o.cfg.EffectiveChunkSize())
			if err != nil {
				return stats, err
			}
			if err := o.catalog.SetCursor(ctx, game.ID, et, joinCursor(p.remoteID, pag.Cursor())); err != nil {
				return stats, err
			}

			items = append(items, page.Items...)
			stats.Fetched += len(page.Items)
			stats.Written += written
			o.emit(Event{Type: EventPageUpserted, RunID: run.ID, Game: game.Code, Phase: phase, Parent: p.remoteID, Written: written, Processed: stats.Fetched})
		}

		ix := match.NewIndex(items)
		if err := o.reconcile(ctx, et, p.localID, ix, &stats); err != nil {
			return stats, err
		}

		// Advance the cursor past this parent so a resume does not refetch it.
		if i+1 < len(parents) {
			if err := o.catalog.SetCursor(ctx, game.ID, et, joinCursor(parents[i+1].remoteID, "")); err != nil {
				return stats, err
			}
		}
	}

	if err := o.catalog.ResetCursor(ctx, game.ID, et); err != nil {
		return stats, err
	}
	if err := o.catalog.SaveCheckpoint(ctx, game.ID, phase); err != nil {
		return stats, err
	}
	o.emit(Event{Type: EventPhaseDone, RunID: run.ID, Game: game.Code, Phase: phase})
	return stats, nil
}

// parentsFor lists the provider-linked parents of one child phase in
// remote-id order.
func (o *Orchestrator) parentsFor(ctx context.Context, et provider.EntityType, game models.Game) ([]parentRef, error) {
	switch et {
	case provider.EntityCards:
		sets, err := o.catalog.LinkedSets(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		out := make([]parentRef, 0, len(sets))
		for _, s := range sets {
			if s.ProviderID == nil || *s.ProviderID == "" {
				continue
			}
			out = append(out, parentRef{localID: s.ID, remoteID: *s.ProviderID})
		}
		return out, nil
	case provider.EntityVariants:
		sets, err := o.catalog.LinkedSets(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		var out []parentRef
		for _, s := range sets {
			cards, err := o.catalog.LinkedCards(ctx, s.ID)
			if err != nil {
				return nil, err
			}
			for _, c := range cards {
				if c.ProviderID == nil || *c.ProviderID == "" {
					continue
				}
				out = append(out, parentRef{localID: c.ID, remoteID: *c.ProviderID})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].remoteID < out[j].remoteID })
		return out, nil
	default:
		return nil, fmt.Errorf("entity type %q has no parent phase", et)
	}
}

func (o *Orchestrator) childFetch(et provider.EntityType, gameCode, parentRemoteID string) provider.FetchPage {
	if et == provider.EntityCards {
		return func(ctx context.Context, c string) (provider.Page, error) {
			return o.api.ListCards(ctx, gameCode, parentRemoteID, c)
		}
	}
	return func(ctx context.Context, c string) (provider.Page, error) {
		return o.api.ListVariants(ctx, gameCode, parentRemoteID, c)
	}
}

// reconcile audits existing links against the fully fetched collection, then
// matches every unlinked local entity and applies the accepted links. Rollback
// runs first so a freshly cleared entity is rematched in the same pass.
func (o *Orchestrator) reconcile(ctx context.Context, et provider.EntityType, parentID uint, ix *match.Index, stats *PhaseStats) error {
	cleared, err := o.auditRollback(ctx, et, parentID, ix)
	if err != nil {
		return err
	}
	stats.RolledBack += cleared

	rows, err := o.catalog.MissingProviderID(ctx, et, parentID)
	if err != nil {
		return err
	}

	matcher := match.NewMatcher(ix, o.api.Scope())
	var links []store.Link
	for _, row := range rows {
		res := matcher.Match(row)
		switch res.Outcome {
		case match.OutcomeMatched:
			links = append(links, store.Link{LocalID: row.LocalID, RemoteID: res.RemoteID})
			stats.Matched++
		case match.OutcomeConflict:
			stats.Conflicts++
			o.logger.Warn("Match conflict needs review",
				zap.String("entity_type", string(et)),
				zap.Uint("local_id", row.LocalID),
				zap.String("name", row.Name),
				zap.String("reason", res.Reason),
			)
		case match.OutcomeOutOfScope:
			stats.OutOfScope++
		default:
			stats.Unmatched++
		}
	}

	if _, err := o.catalog.ApplyMatches(ctx, et, links, o.cfg.EffectiveChunkSize()); err != nil {
		return err
	}
	return nil
}

func joinCursor(parentRemoteID, pageCursor string) string {
	return parentRemoteID + "|" + pageCursor
}

func splitCursor(saved string) (parentRemoteID, pageCursor string) {
	if saved == "" {
		return "", ""
	}
	parts := strings.SplitN(saved, "|", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
