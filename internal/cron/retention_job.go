package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/salesreport/pkg/logger"
)

const ReportRetentionJobName = "report-retention"

// Pruner deletes stored report runs older than a window; reports.Service satisfies it.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ReportRetentionJobParams struct {
	Logger    *logger.Logger
	Pruner    Pruner
	Retention time.Duration
}

type reportRetentionJob struct {
	logg      *logger.Logger
	pruner    Pruner
	retention time.Duration
}

func NewReportRetentionJob(params ReportRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pruner == nil {
		return nil, fmt.Errorf("pruner required")
	}
	if params.Retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", params.Retention)
	}
	return &reportRetentionJob{
		logg:      params.Logger,
		pruner:    params.Pruner,
		retention: params.Retention,
	}, nil
}

func (j *reportRetentionJob) Name() string { return ReportRetentionJobName }

func (j *reportRetentionJob) Run(ctx context.Context) error {
	deleted, err := j.pruner.Prune(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("report retention: %w", err)
	}
	if deleted > 0 {
		j.logg.Info(j.logg.WithField(ctx, "runs_deleted", deleted), "expired report runs removed")
	}
	return nil
}
