package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/salesreport/internal/salesreport"
	"github.com/angelmondragon/salesreport/pkg/config"
	"github.com/angelmondragon/salesreport/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
	"github.com/angelmondragon/salesreport/pkg/logger"
	pkgpagination "github.com/angelmondragon/salesreport/pkg/pagination"
)

const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

type reportsRepository interface {
	Create(ctx context.Context, run *models.ReportRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReportRun, error)
	FindLatestByDigest(ctx context.Context, digest string) (*models.ReportRun, error)
	List(ctx context.Context, opts listQuery) ([]models.ReportRun, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunCache maps dataset digests to stored run ids. Satisfied by *redis.Client.
type RunCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ReportDigestKey(digest string) string
}

type MetricsRecorder interface {
	ObserveDuration(source string, duration time.Duration)
	IncSuccess(source string)
	IncFailure(source, code string)
	AddSkipped(source string, n int)
}

// Service runs seller reports and serves stored runs.
type Service interface {
	Generate(ctx context.Context, input GenerateInput) (*Run, error)
	Get(ctx context.Context, runID uuid.UUID) (*Run, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// GenerateInput carries one dataset to analyze.
type GenerateInput struct {
	Dataset            *salesreport.Dataset
	Source             string
	SkipInvalidRecords bool
}

type service struct {
	repo     reportsRepository
	cache    RunCache
	metrics  MetricsRecorder
	logg     *logger.Logger
	rates    salesreport.BonusRates
	lenient  bool
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService builds the report service. cache and metrics may be nil.
func NewService(repo reportsRepository, cache RunCache, metrics MetricsRecorder, logg *logger.Logger, cfg config.ReportConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logg:    logg,
		rates: salesreport.BonusRates{
			First:    cfg.BonusFirstRate,
			TopThree: cfg.BonusTopThreeRate,
			Default:  cfg.BonusDefaultRate,
		},
		lenient:  cfg.SkipInvalidRecords,
		cacheTTL: cfg.CacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Generate(ctx context.Context, input GenerateInput) (*Run, error) {
	start := s.now()
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = SourceAPI
	}
	lenient := input.SkipInvalidRecords || s.lenient
	ctx = s.logg.WithSource(ctx, source)

	if input.Dataset == nil {
		err := pkgerrors.New(pkgerrors.CodeInvalidInput, "dataset is required")
		s.recordFailure(source, start, err)
		return nil, err
	}

	digest, err := Digest(input.Dataset, s.rates, lenient)
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fingerprint dataset")
		s.recordFailure(source, start, wrapped)
		return nil, wrapped
	}
	ctx = s.logg.WithField(ctx, "dataset_digest", digest)

	if existing := s.lookupExisting(ctx, digest); existing != nil {
		run := toRun(existing)
		run.Cached = true
		s.logg.Info(s.logg.WithRunID(ctx, run.ID.String()), "report served from stored run")
		return run, nil
	}

	report, err := salesreport.Analyze(ctx, input.Dataset, salesreport.Options{
		CalculateRevenue:   salesreport.SimpleRevenue,
		CalculateBonus:     salesreport.NewTieredBonus(s.rates),
		SkipInvalidRecords: lenient,
		Logger:             s.logg,
	})
	if err != nil {
		s.recordFailure(source, start, err)
		return nil, err
	}

	id := uuid.New()
	ctx = s.logg.WithRunID(ctx, id.String())
	model := toModel(id, digest, source, lenient, input.Dataset, report, start.Truncate(time.Microsecond))

	if err := s.repo.Create(ctx, model); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store report run")
		s.recordFailure(source, start, wrapped)
		s.logg.Error(ctx, "failed to store report run", err)
		return nil, wrapped
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.ReportDigestKey(digest), id.String(), s.cacheTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to cache report run id")
		}
	}

	if s.metrics != nil {
		s.metrics.IncSuccess(source)
		s.metrics.AddSkipped(source, len(report.Skipped))
		s.metrics.ObserveDuration(source, s.now().Sub(start))
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"sellers": len(report.Rows),
		"skipped": len(report.Skipped),
	}), "report run stored")

	run := toRun(model)
	run.Rows = report.Rows
	return run, nil
}

// lookupExisting checks the digest cache first, then the store. Lookup
// failures only cost a recomputation, so they are logged and ignored.
func (s *service) lookupExisting(ctx context.Context, digest string) *models.ReportRun {
	if s.cache != nil {
		runID, err := s.cache.Get(ctx, s.cache.ReportDigestKey(digest))
		if err == nil {
			if id, parseErr := uuid.Parse(runID); parseErr == nil {
				if run, findErr := s.repo.FindByID(ctx, id); findErr == nil {
					return run
				}
			}
		}
	}

	run, err := s.repo.FindLatestByDigest(ctx, digest)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "stored run lookup failed")
		}
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.ReportDigestKey(digest), run.ID.String(), s.cacheTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to cache report run id")
		}
	}
	return run
}

func (s *service) recordFailure(source string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncFailure(source, string(code))
	s.metrics.ObserveDuration(source, s.now().Sub(start))
}

func (s *service) Get(ctx context.Context, runID uuid.UUID) (*Run, error) {
	if runID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "run id is required")
	}
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report run not found").
				WithDetails(map[string]any{"run_id": runID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report run")
	}
	return toRun(run), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listQuery{
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
		cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list report runs")
	}

	page, next := pkgpagination.Trim(rows, params.Limit, func(m models.ReportRun) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	items := make([]ListItem, 0, len(page))
	for _, m := range page {
		items = append(items, toListItem(m))
	}
	return &ListResult{Items: items, Cursor: next}, nil
}

// Prune deletes runs created more than olderThan ago.
func (s *service) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be positive")
	}
	cutoff := s.now().Add(-olderThan)
	deleted, err := s.repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune report runs")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"runs_deleted": deleted,
	}), "report retention cleanup complete")
	return deleted, nil
}
