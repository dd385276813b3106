package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/angelmondragon/salesreport/internal/salesreport"
	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
)

// Decode reads a {sellers, products, purchase_records} bundle. Fields the
// report does not use (dates, customer ids, retail prices) are ignored.
func Decode(r io.Reader) (*salesreport.Dataset, error) {
	var data salesreport.Dataset
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dataset json").
			WithDetails(map[string]any{"error": err.Error()})
	}
	return &data, nil
}

// LoadFile decodes the dataset stored at path.
func LoadFile(path string) (*salesreport.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
