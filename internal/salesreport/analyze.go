// Package salesreport computes per-seller revenue, profit, best sellers and
// rank-based bonuses from sellers, products and purchase records.
//
// Analyze is a single synchronous pass: validate, index, sweep, rank, format.
// Every call allocates its own accumulators, so independent calls may run
// concurrently.
package salesreport

import (
	"context"

	"github.com/angelmondragon/salesreport/pkg/logger"
)

// Options injects the revenue and bonus policies. Both are required.
type Options struct {
	CalculateRevenue RevenuePolicy
	CalculateBonus   BonusPolicy

	// SkipInvalidRecords drops purchase records that fail validation or
	// reference an unknown seller or product instead of aborting the run.
	// Dropped records are listed in Report.Skipped.
	SkipInvalidRecords bool

	Logger *logger.Logger
}

// DefaultOptions wires SimpleRevenue and BonusByProfit.
func DefaultOptions() Options {
	return Options{
		CalculateRevenue: SimpleRevenue,
		CalculateBonus:   BonusByProfit,
	}
}

type analysis struct {
	data    *Dataset
	opts    Options
	index   *statsIndex
	skipped []SkippedRecord
}

// Analyze builds the profit-ranked seller report. It returns either a full
// report or an error; no partial rows are ever returned.
func Analyze(ctx context.Context, data *Dataset, opts Options) (*Report, error) {
	if err := Validate(data, opts); err != nil {
		return nil, err
	}

	a := &analysis{
		data:  data,
		opts:  opts,
		index: newStatsIndex(data),
	}
	if err := a.sweep(ctx); err != nil {
		return nil, err
	}

	rank(a.index.order, opts.CalculateBonus)

	report := &Report{
		Rows:    format(a.index.order),
		Skipped: a.skipped,
	}

	if opts.Logger != nil {
		logCtx := opts.Logger.WithFields(ctx, map[string]any{
			"sellers":  len(data.Sellers),
			"products": len(data.Products),
			"records":  len(data.PurchaseRecords),
			"skipped":  len(a.skipped),
		})
		opts.Logger.Debug(logCtx, "seller report computed")
	}
	return report, nil
}
