package store

import (
	"github.com/shopspring/decimal"

	"storekeeper/m/domain"
)

// Report aggregates the sale and purchase logs plus the current inventory.
type Report struct {
	Sales             []domain.Sale
	Purchases         []domain.Purchase
	TotalRevenue      decimal.Decimal
	TotalProfit       decimal.Decimal
	TotalPurchaseCost decimal.Decimal
	Inventory         []domain.Product
}

// Reports totals revenue and profit over every recorded sale and cost over
// every recorded purchase, then includes the sorted inventory listing.
// Read-only, no session.
func (s *Store) Reports() Report {
	r := Report{
		Sales:             append([]domain.Sale(nil), s.sales...),
		Purchases:         append([]domain.Purchase(nil), s.purchases...),
		TotalRevenue:      decimal.Zero,
		TotalProfit:       decimal.Zero,
		TotalPurchaseCost: decimal.Zero,
		Inventory:         s.ListInventory(),
	}
	for i := range s.sales {
		r.TotalRevenue = r.TotalRevenue.Add(s.sales[i].Revenue())
		r.TotalProfit = r.TotalProfit.Add(s.sales[i].Profit)
	}
	for i := range s.purchases {
		r.TotalPurchaseCost = r.TotalPurchaseCost.Add(s.purchases[i].Cost())
	}
	return r
}
