package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/salesreport/pkg/db"
	"github.com/angelmondragon/salesreport/pkg/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status|version|validate]",
		Short: "Manage the report store schema",
		Args:  cobra.MaximumNArgs(1),
		ValidArgs: []string{
			"up", "down", "status", "version", "validate",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			if command == "validate" {
				if err := migrate.Validate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
				return nil
			}

			to, _ := cmd.Flags().GetString("to")
			ctx := a.logg.WithFields(cmd.Context(), map[string]any{"env": a.cfg.App.Env, "cmd": command})

			if !a.cfg.DB.Configured() {
				return fmt.Errorf("no report store configured")
			}
			client, err := db.New(ctx, a.cfg.DB, a.logg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			sqlDB, err := client.SQLDB()
			if err != nil {
				return err
			}

			switch command {
			case "up", "down", "status":
				if command == "up" && to != "" {
					return migrate.MigrateToVersion(ctx, sqlDB, client.Driver(), to)
				}
				return migrate.Run(ctx, sqlDB, client.Driver(), command)
			case "version":
				if to != "" {
					return migrate.MigrateToVersion(ctx, sqlDB, client.Driver(), to)
				}
				v, err := migrate.CurrentVersion(ctx, sqlDB, client.Driver())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			default:
				return fmt.Errorf("unknown migrate command %q", command)
			}
		},
	}
	cmd.Flags().String("to", "", "target version (YYYYMMDDHHMMSS) for up or version")
	return cmd
}
