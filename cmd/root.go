package cmd

import (
	"context"
	"fmt"
	"os"

	"sheet-reconciler/core/config"
	"sheet-reconciler/core/database"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/runs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sheet-reconciler",
	Short: "Merge child spreadsheets into master spreadsheets",
	Long: `Sheet Reconciler joins a child CSV onto a master CSV by identifier.
Identifiers are normalized before matching, child columns that collide with
master columns get numbered suffixes, and unmatched child rows are appended
after the master rows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Development level for ISO8601 timestamps instead of epoch.
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

// loadApp loads the configuration and builds the logger shared by every command.
func loadApp(verbose bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openLedger connects the run ledger. The ledger is optional, so failures only warn
// and yield a disabled store.
func openLedger(ctx context.Context, cfg database.Config, l *zap.Logger) *runs.Store {
	if !cfg.Enabled {
		return runs.NewStore(nil)
	}

	var db *gorm.DB
	if conn, err := database.Connect(cfg); err != nil {
		l.Warn("Optional database connection failed, runs will not be recorded", zap.Error(err))
	} else {
		db = conn
	}

	store := runs.NewStore(db)
	if store.Enabled() {
		if err := store.Migrate(ctx); err != nil {
			l.Warn("Run ledger migration failed, runs will not be recorded", zap.Error(err))
			return runs.NewStore(nil)
		}
		l.Debug("Connected to run ledger", zap.String("database", cfg.Name))
	}
	return store
}
