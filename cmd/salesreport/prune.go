package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/salesreport/internal/reports"
)

func newPruneCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete stored report runs older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if olderThan == 0 {
				olderThan = a.cfg.Report.Retention
			}
			client, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			svc, err := reports.NewService(reports.NewRepository(client.DB()), nil, nil, a.logg, a.cfg.Report)
			if err != nil {
				return err
			}
			deleted, err := svc.Prune(ctx, olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d report run(s)\n", deleted)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention window, defaults to SALESREPORT_REPORT_RETENTION")
	return cmd
}
