// Package store implements the inventory ledger: product entries keyed by
// name plus append-only sale and purchase logs. All mutation rules live
// here; prompting, dispatch and file I/O are the callers' business.
package store

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storekeeper/m/domain"
	"storekeeper/m/internal/auth"
)

var (
	ErrDuplicateProduct  = errors.New("product already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAccessDenied      = errors.New("access denied")
)

// markup is the automatic re-pricing factor applied on purchases.
var markup = decimal.RequireFromString("1.10")

// Store owns the in-memory inventory state. It is exclusively owned by the
// single interactive control flow, so no locking.
type Store struct {
	verifier  auth.TokenVerifier
	inventory map[string]*domain.Product
	sales     []domain.Sale
	purchases []domain.Purchase
}

// New constructs an empty store guarding mutations with the given verifier.
func New(verifier auth.TokenVerifier) *Store {
	return &Store{
		verifier:  verifier,
		inventory: make(map[string]*domain.Product),
	}
}

// Restore replaces the store's collections with previously persisted ones.
func (s *Store) Restore(inventory map[string]domain.Product, sales []domain.Sale, purchases []domain.Purchase) {
	s.inventory = make(map[string]*domain.Product, len(inventory))
	for name, p := range inventory {
		entry := p
		s.inventory[name] = &entry
	}
	s.sales = append([]domain.Sale(nil), sales...)
	s.purchases = append([]domain.Purchase(nil), purchases...)
}

// Snapshot returns copies of the three collections for persistence.
func (s *Store) Snapshot() (map[string]domain.Product, []domain.Sale, []domain.Purchase) {
	inventory := make(map[string]domain.Product, len(s.inventory))
	for name, p := range s.inventory {
		inventory[name] = *p
	}
	return inventory, append([]domain.Sale(nil), s.sales...), append([]domain.Purchase(nil), s.purchases...)
}

func (s *Store) guard(sess *auth.Session) error {
	if err := s.verifier.Verify(sess); err != nil {
		return ErrAccessDenied
	}
	return nil
}

// AddProduct inserts a new entry with empty cost history. The caller is
// responsible for having validated price > 0 and quantity >= 0.
func (s *Store) AddProduct(sess *auth.Session, name, description string, price decimal.Decimal, quantity int64) error {
	if err := s.guard(sess); err != nil {
		return err
	}
	if _, ok := s.inventory[name]; ok {
		return ErrDuplicateProduct
	}
	s.inventory[name] = &domain.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		TotalCost:   decimal.Zero,
	}
	return nil
}

// EditProduct overwrites description, price and quantity in place. The cost
// history is purchase-driven and never touched here.
func (s *Store) EditProduct(sess *auth.Session, name, description string, price decimal.Decimal, quantity int64) error {
	if err := s.guard(sess); err != nil {
		return err
	}
	product, ok := s.inventory[name]
	if !ok {
		return ErrProductNotFound
	}
	product.Description = description
	product.Price = price
	product.Quantity = quantity
	return nil
}

// DeleteProduct removes the entry entirely. Its cost history goes with it;
// the sale and purchase logs keep their records.
func (s *Store) DeleteProduct(sess *auth.Session, name string) error {
	if err := s.guard(sess); err != nil {
		return err
	}
	if _, ok := s.inventory[name]; !ok {
		return ErrProductNotFound
	}
	delete(s.inventory, name)
	return nil
}

// RecordSale decrements stock and appends a sale record whose profit is
// computed from the average cost before the decrement. A quantity above
// current stock rejects the sale without any state change.
func (s *Store) RecordSale(sess *auth.Session, name string, quantity int64, salePrice decimal.Decimal) (domain.Sale, error) {
	if err := s.guard(sess); err != nil {
		return domain.Sale{}, err
	}
	product, ok := s.inventory[name]
	if !ok {
		return domain.Sale{}, ErrProductNotFound
	}
	if quantity > product.Quantity {
		return domain.Sale{}, ErrInsufficientStock
	}
	profit := salePrice.Sub(product.AverageCost()).Mul(decimal.NewFromInt(quantity))
	product.Quantity -= quantity
	sale := domain.Sale{
		ID:          uuid.NewString(),
		ProductName: name,
		Quantity:    quantity,
		SalePrice:   salePrice,
		Profit:      profit,
		RecordedAt:  time.Now().Format(time.RFC3339),
	}
	s.sales = append(s.sales, sale)
	return sale, nil
}

// RecordPurchase adds stock and accumulates the cost history. A purchase
// price above the current selling price re-prices the product at a 10%
// markup over the purchase price; an unknown product is created on the
// spot with that markup and a placeholder description.
func (s *Store) RecordPurchase(sess *auth.Session, name string, quantity int64, purchasePrice decimal.Decimal) (domain.Purchase, error) {
	if err := s.guard(sess); err != nil {
		return domain.Purchase{}, err
	}
	cost := purchasePrice.Mul(decimal.NewFromInt(quantity))
	if product, ok := s.inventory[name]; ok {
		product.Quantity += quantity
		product.TotalCost = product.TotalCost.Add(cost)
		product.TotalPurchasedQty += quantity
		if purchasePrice.GreaterThan(product.Price) {
			product.Price = purchasePrice.Mul(markup)
		}
	} else {
		s.inventory[name] = &domain.Product{
			Name:              name,
			Description:       "No description",
			Price:             purchasePrice.Mul(markup),
			Quantity:          quantity,
			TotalCost:         cost,
			TotalPurchasedQty: quantity,
		}
	}
	purchase := domain.Purchase{
		ID:            uuid.NewString(),
		ProductName:   name,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		RecordedAt:    time.Now().Format(time.RFC3339),
	}
	s.purchases = append(s.purchases, purchase)
	return purchase, nil
}

// ListInventory returns all entries sorted by name. Read-only, no session.
func (s *Store) ListInventory() []domain.Product {
	products := make([]domain.Product, 0, len(s.inventory))
	for _, p := range s.inventory {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})
	return products
}
