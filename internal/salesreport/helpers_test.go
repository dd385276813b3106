package salesreport

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %T: %v", err, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
	return typed
}

func detailsOf(t *testing.T, typed *pkgerrors.Error) map[string]any {
	t.Helper()
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	return details
}

func singleSaleDataset() *Dataset {
	return &Dataset{
		Sellers:  []Seller{{ID: "seller_1", FirstName: "Alexey", LastName: "Petrov"}},
		Products: []Product{{SKU: "SKU_001", PurchasePrice: dec("10")}},
		PurchaseRecords: []PurchaseRecord{{
			ReceiptID:   "receipt_1",
			SellerID:    "seller_1",
			TotalAmount: dec("100"),
			Items: []Item{{
				SKU:       "SKU_001",
				Quantity:  2,
				SalePrice: dec("50"),
				Discount:  dec("0"),
			}},
		}},
	}
}

// sampleDataset is a deterministic mid-sized dataset: 5 sellers, 14 products
// and 40 receipts with one to three lines each.
func sampleDataset() *Dataset {
	data := &Dataset{}
	for i := 1; i <= 5; i++ {
		data.Sellers = append(data.Sellers, Seller{
			ID:        fmt.Sprintf("seller_%d", i),
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
		})
	}
	for i := 1; i <= 14; i++ {
		data.Products = append(data.Products, Product{
			SKU:           fmt.Sprintf("SKU_%03d", i),
			PurchasePrice: decimal.NewFromInt(int64(i * 3)).Add(dec("0.35")),
		})
	}
	for r := 0; r < 40; r++ {
		rec := PurchaseRecord{
			ReceiptID: fmt.Sprintf("receipt_%d", r),
			SellerID:  data.Sellers[(r*7)%5].ID,
		}
		total := decimal.Zero
		for j := 0; j < 1+r%3; j++ {
			product := data.Products[(r*5+j*3)%14]
			item := Item{
				SKU:       product.SKU,
				Quantity:  1 + (r+j)%4,
				SalePrice: product.PurchasePrice.Mul(dec("1.7")),
				Discount:  decimal.NewFromInt(int64((r % 4) * 5)),
			}
			rec.Items = append(rec.Items, item)
			total = total.Add(SimpleRevenue(item, product))
		}
		rec.TotalAmount = total.Round(2)
		data.PurchaseRecords = append(data.PurchaseRecords, rec)
	}
	return data
}
