package salesreport

import "github.com/shopspring/decimal"

const moneyPlaces = 2

func format(sellers []*Accumulator) []ReportRow {
	rows := make([]ReportRow, 0, len(sellers))
	for _, seller := range sellers {
		top := make([]ProductQuantity, len(seller.TopProducts))
		copy(top, seller.TopProducts)

		rows = append(rows, ReportRow{
			SellerID:    seller.ID,
			Name:        seller.Name,
			Revenue:     roundMoney(seller.Revenue),
			Profit:      roundMoney(seller.Profit),
			SalesCount:  seller.SalesCount,
			TopProducts: top,
			Bonus:       roundMoney(seller.Bonus),
		})
	}
	return rows
}

// roundMoney rounds half away from zero.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
