package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/salesreport/pkg/db"
	"github.com/angelmondragon/salesreport/pkg/db/models"
)

// Repository persists report runs and their ranked rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a report repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Create stores the run and all of its rows atomically.
func (r *Repository) Create(ctx context.Context, run *models.ReportRun) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(run).Error; err != nil {
			return err
		}
		if len(run.Rows) == 0 {
			return nil
		}
		for i := range run.Rows {
			run.Rows[i].RunID = run.ID
		}
		return tx.Create(&run.Rows).Error
	})
}

// FindByID loads a run with its rows in rank order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReportRun, error) {
	var run models.ReportRun
	err := r.db.WithContext(ctx).
		Preload("Rows", orderByRank).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindLatestByDigest returns the newest run computed for the given dataset digest.
func (r *Repository) FindLatestByDigest(ctx context.Context, digest string) (*models.ReportRun, error) {
	var run models.ReportRun
	err := r.db.WithContext(ctx).
		Preload("Rows", orderByRank).
		Where("dataset_digest = ?", digest).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first using cursor pagination. Rows are not loaded.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.ReportRun, error) {
	query := r.db.WithContext(ctx).Model(&models.ReportRun{})

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.ReportRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCreatedBefore removes runs older than cutoff together with their rows.
func (r *Repository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		expired := tx.Model(&models.ReportRun{}).Select("id").Where("created_at < ?", cutoff)
		if err := tx.Where("run_id IN (?)", expired).Delete(&models.ReportRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("created_at < ?", cutoff).Delete(&models.ReportRun{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

func orderByRank(tx *gorm.DB) *gorm.DB {
	return tx.Order("rank_index ASC")
}
