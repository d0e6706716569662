package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cardstock/core/config"
	"cardstock/core/database"
	"cardstock/core/logger"
	"cardstock/core/provider"
	"cardstock/core/ratelimit"
	"cardstock/core/storage"
	"cardstock/feature/catalog/store"
	catalogsync "cardstock/feature/catalog/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncGames []string
	syncForce bool
)

// syncCmd runs one catalog sync in the foreground.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a catalog sync against the provider",
	Long: `Runs one full catalog sync in the foreground and exits when it
reaches a terminal state. Interrupting with Ctrl-C cancels at the next page
boundary; the persisted cursors let the next invocation resume.

Examples:
  # Sync every game
  cardstock sync

  # Sync selected games, bypassing the freshness guard
  cardstock sync --game ptcg --game mtg --force`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncGames, "game", nil, "Restrict the run to these game codes (repeatable)")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Bypass the duplicate-sync freshness guard")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	st, err := store.New(db, cfg.Provider.Name)
	if err != nil {
		return err
	}
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate catalog tables: %w", err)
	}

	var archiver *catalogsync.Archiver
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		l.Warn("Report archive disabled", zap.Error(err))
	} else {
		archiver = catalogsync.NewArchiver(client, cfg.Storage.Bucket, cfg.Sync.ReportPrefix)
	}

	limiter := ratelimit.New(cfg.Provider.RequestsPerSecond, cfg.Provider.Burst)
	api := provider.NewClient(cfg.Provider, limiter, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C cancels the run; it settles at the next page boundary.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		l.Warn("Interrupt received, cancelling run")
		cancel()
	}()

	run, err := st.CreateRun(ctx, cfg.Provider.Scope, syncGames)
	if err != nil {
		return err
	}
	l.Info("Starting sync run", zap.String("run_id", run.ID))

	orch := catalogsync.NewOrchestrator(api, st, archiver, cfg.Sync, l)
	go func() {
		for e := range orch.Events() {
			l.Info("Sync progress",
				zap.String("event", string(e.Type)),
				zap.String("game", e.Game),
				zap.String("phase", e.Phase),
				zap.Int64("written", e.Written),
			)
			if e.Type == catalogsync.EventComplete {
				return
			}
		}
	}()

	if err := orch.Execute(ctx, run, catalogsync.Options{Games: syncGames, Force: syncForce}); err != nil {
		return fmt.Errorf("sync run %s failed: %w", run.ID, err)
	}

	final, err := st.Run(context.Background(), run.ID)
	if err != nil {
		return err
	}
	l.Info("Sync run finished",
		zap.String("run_id", final.ID),
		zap.String("status", final.Status),
		zap.Int("processed", final.Processed),
	)
	return nil
}
