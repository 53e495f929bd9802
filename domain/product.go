package domain

import "github.com/shopspring/decimal"

// Product is one SKU's current state plus its cumulative cost history.
// TotalCost and TotalPurchasedQty only ever grow, via purchases.
type Product struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int64           `json:"quantity"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	TotalPurchasedQty int64           `json:"total_purchased_qty"`
}

// AverageCost returns the cost basis per unit: total money ever spent on
// this product divided by total units ever purchased. Zero when nothing
// has been purchased yet.
func (p *Product) AverageCost() decimal.Decimal {
	if p.TotalPurchasedQty == 0 {
		return decimal.Zero
	}
	return p.TotalCost.Div(decimal.NewFromInt(p.TotalPurchasedQty))
}
