package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/salesreport/pkg/db/types"
)

// TopProduct is the stored form of one best-selling product entry.
type TopProduct struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ReportRow is one ranked seller line of a stored run.
type ReportRow struct {
	RunID       uuid.UUID                    `gorm:"column:run_id;type:text;primaryKey"`
	RankIndex   int                          `gorm:"column:rank_index;primaryKey;autoIncrement:false"`
	SellerID    string                       `gorm:"column:seller_id;not null"`
	Name        string                       `gorm:"column:name;not null"`
	Revenue     decimal.Decimal              `gorm:"column:revenue;type:numeric(14,2);not null"`
	Profit      decimal.Decimal              `gorm:"column:profit;type:numeric(14,2);not null"`
	SalesCount  int                          `gorm:"column:sales_count;not null"`
	Bonus       decimal.Decimal              `gorm:"column:bonus;type:numeric(14,2);not null"`
	TopProducts dbtypes.JSONList[TopProduct] `gorm:"column:top_products;type:text;not null"`
}

func (ReportRow) TableName() string { return "report_rows" }
