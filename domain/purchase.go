package domain

import "github.com/shopspring/decimal"

// Purchase is an append-only record of one stock intake.
type Purchase struct {
	ID            string          `json:"id"`
	ProductName   string          `json:"product_name"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	RecordedAt    string          `json:"recorded_at"`
}

// Cost returns purchase price times quantity.
func (p *Purchase) Cost() decimal.Decimal {
	return p.PurchasePrice.Mul(decimal.NewFromInt(p.Quantity))
}
