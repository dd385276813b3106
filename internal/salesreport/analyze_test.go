package salesreport

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
	"github.com/angelmondragon/salesreport/pkg/logger"
)

func TestAnalyze_SingleSellerScenario(t *testing.T) {
	report, err := Analyze(context.Background(), singleSaleDataset(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(report.Rows))
	}

	row := report.Rows[0]
	if row.SellerID != "seller_1" || row.Name != "Alexey Petrov" {
		t.Fatalf("unexpected identity %q %q", row.SellerID, row.Name)
	}
	if !row.Revenue.Equal(dec("100")) {
		t.Fatalf("expected revenue 100, got %s", row.Revenue)
	}
	if !row.Profit.Equal(dec("80")) {
		t.Fatalf("expected profit 80, got %s", row.Profit)
	}
	if row.SalesCount != 1 {
		t.Fatalf("expected one sale, got %d", row.SalesCount)
	}
	// rank 0 is also last place here; first place wins.
	if !row.Bonus.Equal(dec("12")) {
		t.Fatalf("expected bonus 12, got %s", row.Bonus)
	}
	if len(row.TopProducts) != 1 || row.TopProducts[0] != (ProductQuantity{SKU: "SKU_001", Quantity: 2}) {
		t.Fatalf("unexpected top products %+v", row.TopProducts)
	}
	if len(report.Skipped) != 0 || report.Err() != nil {
		t.Fatalf("strict run should not skip anything")
	}

	payload, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal row: %v", err)
	}
	want := `{"seller_id":"seller_1","name":"Alexey Petrov","revenue":100.00,"profit":80.00,"sales_count":1,"top_products":[{"sku":"SKU_001","quantity":2}],"bonus":12.00}`
	if string(payload) != want {
		t.Fatalf("unexpected JSON\n got: %s\nwant: %s", payload, want)
	}
}

func TestAnalyze_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   func() *Dataset
		opts   func() Options
		code   pkgerrors.Code
		detail string
	}{
		{
			name: "nil dataset",
			data: func() *Dataset { return nil },
			opts: DefaultOptions,
			code: pkgerrors.CodeInvalidInput,
		},
		{
			name: "empty sellers",
			data: func() *Dataset {
				d := singleSaleDataset()
				d.Sellers = []Seller{}
				return d
			},
			opts:   DefaultOptions,
			code:   pkgerrors.CodeInvalidInput,
			detail: "sellers",
		},
		{
			name: "missing products",
			data: func() *Dataset {
				d := singleSaleDataset()
				d.Products = nil
				return d
			},
			opts:   DefaultOptions,
			code:   pkgerrors.CodeInvalidInput,
			detail: "products",
		},
		{
			name: "empty purchase records",
			data: func() *Dataset {
				d := singleSaleDataset()
				d.PurchaseRecords = []PurchaseRecord{}
				return d
			},
			opts:   DefaultOptions,
			code:   pkgerrors.CodeInvalidInput,
			detail: "purchase_records",
		},
		{
			name: "missing bonus policy",
			data: singleSaleDataset,
			opts: func() Options {
				o := DefaultOptions()
				o.CalculateBonus = nil
				return o
			},
			code: pkgerrors.CodeMissingPolicy,
		},
		{
			name: "missing revenue policy",
			data: singleSaleDataset,
			opts: func() Options {
				return Options{CalculateBonus: BonusByProfit}
			},
			code: pkgerrors.CodeMissingPolicy,
		},
		{
			name: "collections are checked before policies",
			data: func() *Dataset {
				d := singleSaleDataset()
				d.Sellers = nil
				return d
			},
			opts: func() Options { return Options{} },
			code: pkgerrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Analyze(context.Background(), tt.data(), tt.opts())
			if report != nil {
				t.Fatalf("expected no report on failure")
			}
			typed := requireCode(t, err, tt.code)
			if tt.detail != "" {
				if got := detailsOf(t, typed)["collection"]; got != tt.detail {
					t.Fatalf("expected collection %q, got %v", tt.detail, got)
				}
			}
		})
	}
}

func TestAnalyze_UnknownSellerAborts(t *testing.T) {
	data := singleSaleDataset()
	data.PurchaseRecords = append(data.PurchaseRecords, PurchaseRecord{
		ReceiptID:   "receipt_2",
		SellerID:    "seller_404",
		TotalAmount: dec("5"),
		Items:       []Item{{SKU: "SKU_001", Quantity: 1, SalePrice: dec("5"), Discount: dec("0")}},
	})

	_, err := Analyze(context.Background(), data, DefaultOptions())
	typed := requireCode(t, err, pkgerrors.CodeUnknownSeller)
	details := detailsOf(t, typed)
	if details["seller_id"] != "seller_404" || details["record_index"] != 1 || details["receipt_id"] != "receipt_2" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestAnalyze_UnknownProductAborts(t *testing.T) {
	data := singleSaleDataset()
	data.PurchaseRecords[0].Items = append(data.PurchaseRecords[0].Items, Item{
		SKU: "SKU_404", Quantity: 1, SalePrice: dec("1"), Discount: dec("0"),
	})

	_, err := Analyze(context.Background(), data, DefaultOptions())
	typed := requireCode(t, err, pkgerrors.CodeUnknownProduct)
	if got := detailsOf(t, typed)["sku"]; got != "SKU_404" {
		t.Fatalf("expected offending sku in details, got %v", got)
	}
}

func TestAnalyze_MalformedRecordAbortsStrictRun(t *testing.T) {
	data := singleSaleDataset()
	data.PurchaseRecords[0].Items[0].Discount = dec("150")

	_, err := Analyze(context.Background(), data, DefaultOptions())
	typed := requireCode(t, err, pkgerrors.CodeInvalidInput)
	if _, ok := detailsOf(t, typed)["purchase_records[0].items[0].discount"]; !ok {
		t.Fatalf("expected discount path in details, got %v", typed.Details())
	}
}

func TestAnalyze_LenientModeSkipsBadRecords(t *testing.T) {
	data := singleSaleDataset()
	data.PurchaseRecords = append(data.PurchaseRecords,
		PurchaseRecord{
			ReceiptID: "ghost", SellerID: "seller_404", TotalAmount: dec("5"),
			Items: []Item{{SKU: "SKU_001", Quantity: 1, SalePrice: dec("5"), Discount: dec("0")}},
		},
		PurchaseRecord{
			ReceiptID: "half", SellerID: "seller_1", TotalAmount: dec("70"),
			Items: []Item{
				{SKU: "SKU_001", Quantity: 3, SalePrice: dec("20"), Discount: dec("0")},
				{SKU: "SKU_404", Quantity: 1, SalePrice: dec("10"), Discount: dec("0")},
			},
		},
		PurchaseRecord{
			ReceiptID: "bad-discount", SellerID: "seller_1", TotalAmount: dec("5"),
			Items: []Item{{SKU: "SKU_001", Quantity: 1, SalePrice: dec("5"), Discount: dec("-1")}},
		},
	)

	buf := &bytes.Buffer{}
	opts := DefaultOptions()
	opts.SkipInvalidRecords = true
	opts.Logger = logger.New(logger.Options{ServiceName: "test", Output: buf})

	report, err := Analyze(context.Background(), data, opts)
	if err != nil {
		t.Fatalf("lenient run should not fail: %v", err)
	}

	row := report.Rows[0]
	if row.SalesCount != 1 || !row.Revenue.Equal(dec("100")) || !row.Profit.Equal(dec("80")) {
		t.Fatalf("skipped records must not touch totals: %+v", row)
	}
	if row.TopProducts[0].Quantity != 2 {
		t.Fatalf("partial record leaked into products sold: %+v", row.TopProducts)
	}

	if len(report.Skipped) != 3 {
		t.Fatalf("expected three skipped records, got %d", len(report.Skipped))
	}
	wantCodes := []pkgerrors.Code{pkgerrors.CodeUnknownSeller, pkgerrors.CodeUnknownProduct, pkgerrors.CodeInvalidInput}
	for i, want := range wantCodes {
		if report.Skipped[i].Code != string(want) {
			t.Fatalf("skipped[%d] expected %s, got %s", i, want, report.Skipped[i].Code)
		}
		if report.Skipped[i].Index != i+1 {
			t.Fatalf("skipped[%d] expected index %d, got %d", i, i+1, report.Skipped[i].Index)
		}
		if !pkgerrors.IsCode(report.Skipped[i].Err(), want) {
			t.Fatalf("skipped[%d] lost its typed error", i)
		}
	}
	if got := len(multierr.Errors(report.Err())); got != 3 {
		t.Fatalf("expected combined error of 3, got %d", got)
	}
	if strings.Count(buf.String(), "purchase record skipped") != 3 {
		t.Fatalf("expected one warning per skipped record; log=%s", buf.String())
	}
}

func TestAnalyze_Properties(t *testing.T) {
	data := sampleDataset()
	report, err := Analyze(context.Background(), data, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	rows := report.Rows

	if len(rows) != len(data.Sellers) {
		t.Fatalf("expected %d rows, got %d", len(data.Sellers), len(rows))
	}

	sold := map[string]map[string]bool{}
	for _, rec := range data.PurchaseRecords {
		if sold[rec.SellerID] == nil {
			sold[rec.SellerID] = map[string]bool{}
		}
		for _, item := range rec.Items {
			sold[rec.SellerID][item.SKU] = true
		}
	}

	salesTotal := 0
	for i, row := range rows {
		if i > 0 && rows[i-1].Profit.LessThan(row.Profit) {
			t.Fatalf("rows %d and %d out of profit order: %s < %s", i-1, i, rows[i-1].Profit, row.Profit)
		}
		for _, money := range []struct {
			name  string
			value string
		}{{"revenue", row.Revenue.String()}, {"profit", row.Profit.String()}, {"bonus", row.Bonus.String()}} {
			v := dec(money.value)
			if !v.Equal(v.Round(2)) {
				t.Fatalf("%s of %s not rounded to cents: %s", money.name, row.SellerID, v)
			}
		}
		if len(row.TopProducts) > TopProductsLimit {
			t.Fatalf("top products exceed limit for %s", row.SellerID)
		}
		for j, top := range row.TopProducts {
			if j > 0 && row.TopProducts[j-1].Quantity < top.Quantity {
				t.Fatalf("top products of %s not sorted: %+v", row.SellerID, row.TopProducts)
			}
			if !sold[row.SellerID][top.SKU] {
				t.Fatalf("seller %s never sold %s", row.SellerID, top.SKU)
			}
		}
		salesTotal += row.SalesCount
	}
	if salesTotal != len(data.PurchaseRecords) {
		t.Fatalf("expected %d sales in total, got %d", len(data.PurchaseRecords), salesTotal)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	first, err := Analyze(context.Background(), sampleDataset(), DefaultOptions())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Analyze(context.Background(), sampleDataset(), DefaultOptions())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, err := json.Marshal(first.Rows)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b, err := json.Marshal(second.Rows)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("runs differ\n%s\n%s", a, b)
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	data := sampleDataset()
	before, _ := json.Marshal(data)

	if _, err := Analyze(context.Background(), data, DefaultOptions()); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	after, _ := json.Marshal(data)
	if !bytes.Equal(before, after) {
		t.Fatalf("dataset was mutated by the pipeline")
	}
}
