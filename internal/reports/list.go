package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/salesreport/internal/salesreport"
	"github.com/angelmondragon/salesreport/pkg/db/models"
	pkgpagination "github.com/angelmondragon/salesreport/pkg/pagination"
)

// Run is the API view of a stored report run.
type Run struct {
	ID            uuid.UUID               `json:"id"`
	DatasetDigest string                  `json:"dataset_digest"`
	Source        string                  `json:"source"`
	Lenient       bool                    `json:"lenient"`
	SellerCount   int                     `json:"seller_count"`
	RecordCount   int                     `json:"record_count"`
	SkippedCount  int                     `json:"skipped_count"`
	Skipped       []models.SkippedEntry   `json:"skipped"`
	CreatedAt     time.Time               `json:"created_at"`
	Cached        bool                    `json:"cached"`
	Rows          []salesreport.ReportRow `json:"rows"`
}

type ListParams struct {
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

// ListItem summarises a run without its rows.
type ListItem struct {
	ID            uuid.UUID `json:"id"`
	DatasetDigest string    `json:"dataset_digest"`
	Source        string    `json:"source"`
	Lenient       bool      `json:"lenient"`
	SellerCount   int       `json:"seller_count"`
	RecordCount   int       `json:"record_count"`
	SkippedCount  int       `json:"skipped_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func toListItem(m models.ReportRun) ListItem {
	return ListItem{
		ID:            m.ID,
		DatasetDigest: m.DatasetDigest,
		Source:        m.Source,
		Lenient:       m.Lenient,
		SellerCount:   m.SellerCount,
		RecordCount:   m.RecordCount,
		SkippedCount:  m.SkippedCount,
		CreatedAt:     m.CreatedAt,
	}
}

func toRun(m *models.ReportRun) *Run {
	rows := make([]salesreport.ReportRow, 0, len(m.Rows))
	for _, r := range m.Rows {
		top := make([]salesreport.ProductQuantity, 0, len(r.TopProducts))
		for _, p := range r.TopProducts {
			top = append(top, salesreport.ProductQuantity{SKU: p.SKU, Quantity: p.Quantity})
		}
		rows = append(rows, salesreport.ReportRow{
			SellerID:    r.SellerID,
			Name:        r.Name,
			Revenue:     r.Revenue,
			Profit:      r.Profit,
			SalesCount:  r.SalesCount,
			TopProducts: top,
			Bonus:       r.Bonus,
		})
	}
	skipped := []models.SkippedEntry(m.Skipped)
	if skipped == nil {
		skipped = []models.SkippedEntry{}
	}
	return &Run{
		ID:            m.ID,
		DatasetDigest: m.DatasetDigest,
		Source:        m.Source,
		Lenient:       m.Lenient,
		SellerCount:   m.SellerCount,
		RecordCount:   m.RecordCount,
		SkippedCount:  m.SkippedCount,
		Skipped:       skipped,
		CreatedAt:     m.CreatedAt,
		Rows:          rows,
	}
}

func toModel(id uuid.UUID, digest, source string, lenient bool, data *salesreport.Dataset, report *salesreport.Report, createdAt time.Time) *models.ReportRun {
	rows := make([]models.ReportRow, 0, len(report.Rows))
	for i, r := range report.Rows {
		top := make([]models.TopProduct, 0, len(r.TopProducts))
		for _, p := range r.TopProducts {
			top = append(top, models.TopProduct{SKU: p.SKU, Quantity: p.Quantity})
		}
		rows = append(rows, models.ReportRow{
			RunID:       id,
			RankIndex:   i,
			SellerID:    r.SellerID,
			Name:        r.Name,
			Revenue:     r.Revenue,
			Profit:      r.Profit,
			SalesCount:  r.SalesCount,
			Bonus:       r.Bonus,
			TopProducts: top,
		})
	}
	skipped := make([]models.SkippedEntry, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		skipped = append(skipped, models.SkippedEntry{
			Index:     s.Index,
			ReceiptID: s.ReceiptID,
			SellerID:  s.SellerID,
			Code:      s.Code,
			Message:   s.Message,
		})
	}
	return &models.ReportRun{
		ID:            id,
		DatasetDigest: digest,
		Source:        source,
		Lenient:       lenient,
		SellerCount:   len(data.Sellers),
		RecordCount:   len(data.PurchaseRecords),
		SkippedCount:  len(skipped),
		Skipped:       skipped,
		CreatedAt:     createdAt,
		Rows:          rows,
	}
}
