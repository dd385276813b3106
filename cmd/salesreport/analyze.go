package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/salesreport/internal/dataset"
	"github.com/angelmondragon/salesreport/internal/export"
	"github.com/angelmondragon/salesreport/internal/reports"
	"github.com/angelmondragon/salesreport/internal/salesreport"
	"github.com/angelmondragon/salesreport/pkg/redis"
)

type analyzeFlags struct {
	input       string
	output      string
	xlsx        string
	skipInvalid bool
	persist     bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute the seller report for a dataset file",
		Long: `Reads a {sellers, products, purchase_records} JSON bundle, ranks sellers
by profit and writes the report as JSON (stdout by default) and optionally xlsx.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "dataset JSON file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "-", "report JSON file, - for stdout")
	cmd.Flags().StringVar(&flags.xlsx, "xlsx", "", "also write the report as an xlsx workbook")
	cmd.Flags().BoolVar(&flags.skipInvalid, "skip-invalid", false, "skip malformed or unresolvable purchase records instead of failing")
	cmd.Flags().BoolVar(&flags.persist, "persist", false, "store the run in the configured report store")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) runAnalyze(ctx context.Context, stdout, stderr io.Writer, flags *analyzeFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := dataset.LoadFile(flags.input)
	if err != nil {
		return err
	}
	lenient := flags.skipInvalid || a.cfg.Report.SkipInvalidRecords

	var (
		rows    []salesreport.ReportRow
		skipped int
	)
	if flags.persist {
		run, err := a.generateStored(ctx, data, lenient)
		if err != nil {
			return err
		}
		rows, skipped = run.Rows, run.SkippedCount
		fmt.Fprintf(stderr, "stored run %s (cached=%t)\n", run.ID, run.Cached)
	} else {
		report, err := salesreport.Analyze(ctx, data, salesreport.Options{
			CalculateRevenue: salesreport.SimpleRevenue,
			CalculateBonus: salesreport.NewTieredBonus(salesreport.BonusRates{
				First:    a.cfg.Report.BonusFirstRate,
				TopThree: a.cfg.Report.BonusTopThreeRate,
				Default:  a.cfg.Report.BonusDefaultRate,
			}),
			SkipInvalidRecords: lenient,
			Logger:             a.logg,
		})
		if err != nil {
			return err
		}
		rows, skipped = report.Rows, len(report.Skipped)
		for _, s := range report.Skipped {
			fmt.Fprintf(stderr, "skipped record %d (%s): %s\n", s.Index, s.Code, s.Message)
		}
	}
	if skipped > 0 {
		fmt.Fprintf(stderr, "%d purchase record(s) skipped\n", skipped)
	}

	if err := writeJSONReport(stdout, flags.output, rows); err != nil {
		return err
	}
	if flags.xlsx != "" {
		if err := writeXLSXReport(flags.xlsx, a.cfg.Report.SheetName, rows); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) generateStored(ctx context.Context, data *salesreport.Dataset, lenient bool) (*reports.Run, error) {
	client, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	var cache reports.RunCache
	if a.cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, a.cfg.Redis, a.logg)
		if err != nil {
			a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "redis unavailable, continuing without run cache")
		} else {
			defer func() { _ = redisClient.Close() }()
			cache = redisClient
		}
	}

	svc, err := reports.NewService(reports.NewRepository(client.DB()), cache, nil, a.logg, a.cfg.Report)
	if err != nil {
		return nil, err
	}
	return svc.Generate(ctx, reports.GenerateInput{
		Dataset:            data,
		Source:             reports.SourceCLI,
		SkipInvalidRecords: lenient,
	})
}

func writeJSONReport(stdout io.Writer, path string, rows []salesreport.ReportRow) error {
	if path == "" || path == "-" {
		return export.WriteJSON(stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteJSON(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeXLSXReport(path, sheet string, rows []salesreport.ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteXLSX(f, sheet, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
