package cmd

import (
	"fmt"
	"os"

	"cardstock/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardstock",
	Short: "Cardstock Catalog Sync Service",
	Long: `Cardstock keeps a local trading-card catalog mirror in sync with a
remote provider: paginated fetching with durable resume cursors, exact-only
identity matching and rollback of links the provider no longer knows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level so CLI users get readable
		// ISO8601-timestamped output instead of production JSON.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
