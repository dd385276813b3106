package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/angelmondragon/salesreport/pkg/db/types"
)

// SkippedEntry is the stored form of a purchase record dropped in lenient mode.
type SkippedEntry struct {
	Index     int    `json:"index"`
	ReceiptID string `json:"receipt_id,omitempty"`
	SellerID  string `json:"seller_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// ReportRun is one persisted execution of the seller report.
type ReportRun struct {
	ID            uuid.UUID                      `gorm:"column:id;type:text;primaryKey"`
	DatasetDigest string                         `gorm:"column:dataset_digest;not null"`
	Source        string                         `gorm:"column:source;not null"`
	Lenient       bool                           `gorm:"column:lenient;not null"`
	SellerCount   int                            `gorm:"column:seller_count;not null"`
	RecordCount   int                            `gorm:"column:record_count;not null"`
	SkippedCount  int                            `gorm:"column:skipped_count;not null"`
	Skipped       dbtypes.JSONList[SkippedEntry] `gorm:"column:skipped;type:text"`
	CreatedAt     time.Time                      `gorm:"column:created_at;not null"`
	Rows          []ReportRow                    `gorm:"foreignKey:RunID;references:ID"`
}

func (ReportRun) TableName() string { return "report_runs" }
