package salesreport

import "github.com/shopspring/decimal"

// RevenuePolicy computes the revenue of a single line item. Implementations
// must be pure.
type RevenuePolicy func(item Item, product Product) decimal.Decimal

// BonusPolicy computes the bonus for the seller at the given 0-based rank out
// of total sellers. Implementations must be pure and must not mutate seller.
type BonusPolicy func(rank, total int, seller *Accumulator) decimal.Decimal

var hundred = decimal.NewFromInt(100)

// SimpleRevenue is sale_price * quantity with the percentage discount applied.
func SimpleRevenue(item Item, _ Product) decimal.Decimal {
	gross := item.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return gross.Mul(decimal.NewFromInt(1).Sub(item.Discount.Div(hundred)))
}

// BonusRates are the profit shares paid per rank band.
type BonusRates struct {
	First    decimal.Decimal
	TopThree decimal.Decimal
	Default  decimal.Decimal
}

var DefaultBonusRates = BonusRates{
	First:    decimal.RequireFromString("0.15"),
	TopThree: decimal.RequireFromString("0.10"),
	Default:  decimal.RequireFromString("0.05"),
}

// NewTieredBonus builds a rank ladder. Bands are checked in the order first,
// top three, last place, default; the first match wins, so a single seller is
// paid as first rather than last.
func NewTieredBonus(rates BonusRates) BonusPolicy {
	return func(rank, total int, seller *Accumulator) decimal.Decimal {
		switch {
		case rank == 0:
			return seller.Profit.Mul(rates.First)
		case rank == 1 || rank == 2:
			return seller.Profit.Mul(rates.TopThree)
		case rank == total-1:
			return decimal.Zero
		default:
			return seller.Profit.Mul(rates.Default)
		}
	}
}

var defaultBonus = NewTieredBonus(DefaultBonusRates)

// BonusByProfit is the tiered ladder with DefaultBonusRates.
func BonusByProfit(rank, total int, seller *Accumulator) decimal.Decimal {
	return defaultBonus(rank, total, seller)
}
