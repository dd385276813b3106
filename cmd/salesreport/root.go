package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/salesreport/pkg/config"
	"github.com/angelmondragon/salesreport/pkg/db"
	"github.com/angelmondragon/salesreport/pkg/logger"
	"github.com/angelmondragon/salesreport/pkg/migrate"
)

const serviceName = "salesreport"

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfg  *config.Config
	logg *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Seller performance reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logg = logger.New(logger.Options{
				ServiceName: serviceName,
				Level:       logger.ParseLevel(cfg.App.LogLevel),
				WarnStack:   cfg.App.LogWarnStack,
				Output:      cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	root.AddCommand(newAnalyzeCmd(a), newMigrateCmd(a), newPruneCmd(a))
	return root
}

// openStore connects to the configured report store and applies migrations
// when auto-migrate is on or the store is SQLite.
func (a *app) openStore(ctx context.Context) (*db.Client, error) {
	if !a.cfg.DB.Configured() {
		return nil, fmt.Errorf("no report store configured: set %s or %s", config.EnvDBDSN, config.EnvDBName)
	}
	client, err := db.New(ctx, a.cfg.DB, a.logg)
	if err != nil {
		return nil, err
	}
	if err := migrate.MaybeRun(ctx, a.cfg, a.logg, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
