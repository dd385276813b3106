package salesreport

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks a dataset and the configured policies before any
// computation runs. Collections are checked first, then policies, then the
// reference data. Purchase records are checked here only in strict mode; in
// lenient mode malformed records are skipped during the sweep.
func Validate(data *Dataset, opts Options) error {
	if data == nil {
		return invalidInput("dataset is required", map[string]any{"reason": "missing"})
	}
	if err := validateCollections(data); err != nil {
		return err
	}
	if opts.CalculateRevenue == nil {
		return missingPolicy("calculate_revenue")
	}
	if opts.CalculateBonus == nil {
		return missingPolicy("calculate_bonus")
	}
	if err := validateSellers(data.Sellers); err != nil {
		return err
	}
	if err := validateProducts(data.Products); err != nil {
		return err
	}
	if opts.SkipInvalidRecords {
		return nil
	}
	for i, rec := range data.PurchaseRecords {
		if err := validateRecord(i, rec); err != nil {
			return err
		}
	}
	return nil
}

func validateCollections(data *Dataset) error {
	collections := []struct {
		name  string
		isNil bool
		size  int
	}{
		{"sellers", data.Sellers == nil, len(data.Sellers)},
		{"products", data.Products == nil, len(data.Products)},
		{"purchase_records", data.PurchaseRecords == nil, len(data.PurchaseRecords)},
	}
	for _, c := range collections {
		if c.isNil {
			return missingCollection(c.name, false)
		}
		if c.size == 0 {
			return missingCollection(c.name, true)
		}
	}
	return nil
}

func validateSellers(sellers []Seller) error {
	seen := make(map[string]int, len(sellers))
	for i, seller := range sellers {
		if err := validate.Struct(seller); err != nil {
			return formatValidationErrors("sellers", i, err)
		}
		if first, dup := seen[seller.ID]; dup {
			return invalidInput(fmt.Sprintf("duplicate seller id %q", seller.ID), map[string]any{
				fmt.Sprintf("sellers[%d].id", i): fmt.Sprintf("duplicates sellers[%d]", first),
			})
		}
		seen[seller.ID] = i
	}
	return nil
}

func validateProducts(products []Product) error {
	seen := make(map[string]int, len(products))
	for i, product := range products {
		if err := validate.Struct(product); err != nil {
			return formatValidationErrors("products", i, err)
		}
		if first, dup := seen[product.SKU]; dup {
			return invalidInput(fmt.Sprintf("duplicate product sku %q", product.SKU), map[string]any{
				fmt.Sprintf("products[%d].sku", i): fmt.Sprintf("duplicates products[%d]", first),
			})
		}
		seen[product.SKU] = i
	}
	return nil
}

func validateRecord(index int, rec PurchaseRecord) error {
	if err := validate.Struct(rec); err != nil {
		return formatValidationErrors("purchase_records", index, err)
	}
	return nil
}

func formatValidationErrors(collection string, index int, err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, fmt.Sprintf("invalid %s entry", collection))
	}
	details := map[string]any{}
	for _, fieldErr := range errs {
		path := fieldErr.Namespace()
		if _, rest, found := strings.Cut(path, "."); found {
			path = rest
		}
		details[fmt.Sprintf("%s[%d].%s", collection, index, path)] = validationMessage(fieldErr)
	}
	return invalidInput(fmt.Sprintf("invalid %s entry at index %d", collection, index), details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
