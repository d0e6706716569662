package cmd

import (
	"context"
	"fmt"

	"cardstock/core/config"
	"cardstock/core/database"
	"cardstock/core/logger"
	"cardstock/feature/catalog/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cursorCmd is the parent command for cursor inspection and maintenance.
var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect and reset sync resume cursors",
}

// cursorListCmd lists the persisted cursors.
var cursorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted resume cursors",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, l, err := cursorStore()
		if err != nil {
			return err
		}

		cursors, err := st.Cursors(context.Background())
		if err != nil {
			return err
		}
		if len(cursors) == 0 {
			l.Info("No cursors persisted; every stream starts from the top")
			return nil
		}
		for _, c := range cursors {
			l.Info("Cursor",
				zap.Uint("game_id", c.GameID),
				zap.String("entity_type", c.EntityType),
				zap.String("cursor", c.Cursor),
			)
		}
		return nil
	},
}

// cursorResetCmd drops every cursor so the next run performs a full sync.
var cursorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all resume cursors to force a full sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, l, err := cursorStore()
		if err != nil {
			return err
		}

		dropped, err := st.DropCursors(context.Background())
		if err != nil {
			return err
		}
		l.Info("Cursors dropped", zap.Int64("count", dropped))
		return nil
	},
}

func init() {
	cursorCmd.AddCommand(cursorListCmd)
	cursorCmd.AddCommand(cursorResetCmd)
	RootCmd.AddCommand(cursorCmd)
}

func cursorStore() (*store.Store, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&logger.Config{Level: "info", Format: "console"})
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st, err := store.New(db, cfg.Provider.Name)
	if err != nil {
		return nil, nil, err
	}
	return st, l, nil
}
