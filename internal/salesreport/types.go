package salesreport

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Seller is reference data describing one member of the sales team.
type Seller struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Product is reference data keyed by SKU.
type Product struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name,omitempty"`
	Category      string          `json:"category,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0"`
}

// Item is one line of a purchase record.
type Item struct {
	SKU       string          `json:"sku" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"gte=0"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0,lte=100"`
}

// PurchaseRecord is a receipt issued by a seller.
type PurchaseRecord struct {
	ReceiptID   string          `json:"receipt_id,omitempty"`
	SellerID    string          `json:"seller_id" validate:"required"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []Item          `json:"items" validate:"dive"`
}

// Dataset bundles the three inputs of a report run.
type Dataset struct {
	Sellers         []Seller         `json:"sellers"`
	Products        []Product        `json:"products"`
	PurchaseRecords []PurchaseRecord `json:"purchase_records"`
}

// ProductQuantity is a SKU with the number of units a seller sold.
type ProductQuantity struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Accumulator holds the running totals for one seller during a run.
// Bonus policies receive it read-only after the sweep has completed.
type Accumulator struct {
	ID         string
	Name       string
	Revenue    decimal.Decimal
	Profit     decimal.Decimal
	SalesCount int

	Bonus       decimal.Decimal
	TopProducts []ProductQuantity

	sold      map[string]int
	soldOrder []string
}

func newAccumulator(seller Seller) *Accumulator {
	return &Accumulator{
		ID:      seller.ID,
		Name:    seller.FirstName + " " + seller.LastName,
		Revenue: decimal.Zero,
		Profit:  decimal.Zero,
		Bonus:   decimal.Zero,
		sold:    make(map[string]int),
	}
}

func (a *Accumulator) addSold(sku string, quantity int) {
	if _, ok := a.sold[sku]; !ok {
		a.sold[sku] = 0
		a.soldOrder = append(a.soldOrder, sku)
	}
	a.sold[sku] += quantity
}

// ProductsSold returns the quantities per SKU in first-encounter order.
func (a *Accumulator) ProductsSold() []ProductQuantity {
	out := make([]ProductQuantity, 0, len(a.soldOrder))
	for _, sku := range a.soldOrder {
		out = append(out, ProductQuantity{SKU: sku, Quantity: a.sold[sku]})
	}
	return out
}

// ItemsSold is the total number of units across all SKUs.
func (a *Accumulator) ItemsSold() int {
	total := 0
	for _, qty := range a.sold {
		total += qty
	}
	return total
}

// ReportRow is the published result for one seller. Money fields are
// rounded to two places and serialised with exactly two decimals.
type ReportRow struct {
	SellerID    string            `json:"seller_id"`
	Name        string            `json:"name"`
	Revenue     decimal.Decimal   `json:"revenue"`
	Profit      decimal.Decimal   `json:"profit"`
	SalesCount  int               `json:"sales_count"`
	TopProducts []ProductQuantity `json:"top_products"`
	Bonus       decimal.Decimal   `json:"bonus"`
}

type reportRowJSON struct {
	SellerID    string            `json:"seller_id"`
	Name        string            `json:"name"`
	Revenue     json.Number       `json:"revenue"`
	Profit      json.Number       `json:"profit"`
	SalesCount  int               `json:"sales_count"`
	TopProducts []ProductQuantity `json:"top_products"`
	Bonus       json.Number       `json:"bonus"`
}

func (r ReportRow) MarshalJSON() ([]byte, error) {
	top := r.TopProducts
	if top == nil {
		top = []ProductQuantity{}
	}
	return json.Marshal(reportRowJSON{
		SellerID:    r.SellerID,
		Name:        r.Name,
		Revenue:     json.Number(r.Revenue.StringFixed(2)),
		Profit:      json.Number(r.Profit.StringFixed(2)),
		SalesCount:  r.SalesCount,
		TopProducts: top,
		Bonus:       json.Number(r.Bonus.StringFixed(2)),
	})
}

// SkippedRecord describes a purchase record dropped in lenient mode.
type SkippedRecord struct {
	Index     int    `json:"index"`
	ReceiptID string `json:"receipt_id,omitempty"`
	SellerID  string `json:"seller_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`

	err error
}

// Err returns the underlying failure.
func (s SkippedRecord) Err() error {
	return s.err
}

// Report is the outcome of one pipeline run.
type Report struct {
	Rows    []ReportRow     `json:"rows"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

// Err combines the failures of every skipped record. It is nil for strict
// runs and for lenient runs that skipped nothing.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var errs error
	for _, s := range r.Skipped {
		errs = multierr.Append(errs, s.err)
	}
	return errs
}
