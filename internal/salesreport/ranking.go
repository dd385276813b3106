package salesreport

import (
	"cmp"
	"slices"
)

// TopProductsLimit caps the best-seller list of every report row.
const TopProductsLimit = 10

// rank orders sellers by profit, highest first, keeping input order between
// equal profits, then assigns bonuses and best sellers per rank.
func rank(sellers []*Accumulator, bonus BonusPolicy) {
	slices.SortStableFunc(sellers, func(a, b *Accumulator) int {
		return b.Profit.Cmp(a.Profit)
	})

	total := len(sellers)
	for i, seller := range sellers {
		seller.Bonus = bonus(i, total, seller)
		seller.TopProducts = topProducts(seller.ProductsSold(), TopProductsLimit)
	}
}

// topProducts sorts by quantity descending; equal quantities keep their
// first-encounter order.
func topProducts(sold []ProductQuantity, limit int) []ProductQuantity {
	sorted := slices.Clone(sold)
	slices.SortStableFunc(sorted, func(a, b ProductQuantity) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
