package salesreport

import (
	"context"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

// sweep walks every purchase record once and folds it into the seller's
// accumulator. A record is resolved in full before anything is mutated, so a
// skipped record leaves no partial totals behind.
func (a *analysis) sweep(ctx context.Context) error {
	for i, rec := range a.data.PurchaseRecords {
		if a.opts.SkipInvalidRecords {
			if err := validateRecord(i, rec); err != nil {
				a.skip(ctx, i, rec, err)
				continue
			}
		}

		seller, products, err := a.resolve(i, rec)
		if err != nil {
			if a.opts.SkipInvalidRecords {
				a.skip(ctx, i, rec, err)
				continue
			}
			return err
		}

		a.apply(seller, rec, products)
	}
	return nil
}

func (a *analysis) resolve(index int, rec PurchaseRecord) (*Accumulator, []Product, error) {
	seller, ok := a.index.seller(rec.SellerID)
	if !ok {
		return nil, nil, unknownSeller(index, rec)
	}
	products := make([]Product, len(rec.Items))
	for j, item := range rec.Items {
		product, ok := a.index.product(item.SKU)
		if !ok {
			return nil, nil, unknownProduct(index, rec, item.SKU)
		}
		products[j] = product
	}
	return seller, products, nil
}

func (a *analysis) apply(seller *Accumulator, rec PurchaseRecord, products []Product) {
	seller.SalesCount++
	seller.Revenue = seller.Revenue.Add(rec.TotalAmount)

	for j, item := range rec.Items {
		product := products[j]
		cost := product.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		revenue := a.opts.CalculateRevenue(item, product)
		seller.Profit = seller.Profit.Add(revenue.Sub(cost))
		seller.addSold(item.SKU, item.Quantity)
	}
}

func (a *analysis) skip(ctx context.Context, index int, rec PurchaseRecord, err error) {
	skipped := SkippedRecord{
		Index:     index,
		ReceiptID: rec.ReceiptID,
		SellerID:  rec.SellerID,
		Code:      string(pkgerrors.CodeInternal),
		Message:   err.Error(),
		err:       err,
	}
	if typed := pkgerrors.As(err); typed != nil {
		skipped.Code = string(typed.Code())
		skipped.Message = typed.Message()
	}
	a.skipped = append(a.skipped, skipped)

	if a.opts.Logger != nil {
		logCtx := a.opts.Logger.WithFields(ctx, map[string]any{
			"record_index": index,
			"receipt_id":   rec.ReceiptID,
			"seller_id":    rec.SellerID,
			"error_code":   skipped.Code,
		})
		a.opts.Logger.Warn(logCtx, "purchase record skipped")
	}
}
