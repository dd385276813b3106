// Package export renders seller report rows as JSON documents or xlsx workbooks.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/salesreport/internal/salesreport"
)

const DefaultSheetName = "Sellers"

// moneyFormat is the built-in "0.00" number format.
const moneyFormat = 2

var header = []any{"Rank", "Seller ID", "Name", "Revenue", "Profit", "Sales", "Bonus", "Top products"}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []salesreport.ReportRow) error {
	if rows == nil {
		rows = []salesreport.ReportRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook with a header row and one row per seller.
func WriteXLSX(w io.Writer, sheet string, rows []salesreport.ReportRow) error {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			i + 1,
			r.SellerID,
			r.Name,
			r.Revenue.Round(2).InexactFloat64(),
			r.Profit.Round(2).InexactFloat64(),
			r.SalesCount,
			r.Bonus.Round(2).InexactFloat64(),
			topProductsCell(r.TopProducts),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
		if err != nil {
			return fmt.Errorf("money style: %w", err)
		}
		last := strconv.Itoa(len(rows) + 1)
		for _, col := range []string{"D", "E", "G"} {
			if err := f.SetCellStyle(sheet, col+"2", col+last, style); err != nil {
				return fmt.Errorf("apply money style: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func topProductsCell(top []salesreport.ProductQuantity) string {
	parts := make([]string, 0, len(top))
	for _, p := range top {
		parts = append(parts, fmt.Sprintf("%s×%d", p.SKU, p.Quantity))
	}
	return strings.Join(parts, ", ")
}
