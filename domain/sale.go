package domain

import "github.com/shopspring/decimal"

// Sale is an append-only record of one completed sale. Profit is fixed at
// recording time from the product's average cost, so later purchases never
// rewrite history.
type Sale struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Profit      decimal.Decimal `json:"profit"`
	RecordedAt  string          `json:"recorded_at"`
}

// Revenue returns sale price times quantity.
func (s *Sale) Revenue() decimal.Decimal {
	return s.SalePrice.Mul(decimal.NewFromInt(s.Quantity))
}
