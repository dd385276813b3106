package salesreport

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

func invalidInput(message string, details map[string]any) error {
	return pkgerrors.New(pkgerrors.CodeInvalidInput, message).WithDetails(details)
}

func missingCollection(name string, empty bool) error {
	reason := "missing"
	if empty {
		reason = "empty"
	}
	return invalidInput(fmt.Sprintf("%s collection is %s", name, reason), map[string]any{
		"collection": name,
		"reason":     reason,
	})
}

func missingPolicy(name string) error {
	return pkgerrors.New(pkgerrors.CodeMissingPolicy, fmt.Sprintf("%s policy is required", name)).
		WithDetails(map[string]any{"policy": name})
}

func unknownSeller(index int, rec PurchaseRecord) error {
	return pkgerrors.New(pkgerrors.CodeUnknownSeller, fmt.Sprintf("unknown seller %q", rec.SellerID)).
		WithDetails(map[string]any{
			"seller_id":    rec.SellerID,
			"record_index": index,
			"receipt_id":   rec.ReceiptID,
		})
}

func unknownProduct(index int, rec PurchaseRecord, sku string) error {
	return pkgerrors.New(pkgerrors.CodeUnknownProduct, fmt.Sprintf("unknown product %q", sku)).
		WithDetails(map[string]any{
			"sku":          sku,
			"seller_id":    rec.SellerID,
			"record_index": index,
			"receipt_id":   rec.ReceiptID,
		})
}
