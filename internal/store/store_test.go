package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storekeeper/m/internal/auth"
)

// stubVerifier accepts or rejects every session.
type stubVerifier struct {
	err error
}

func (v *stubVerifier) Verify(_ *auth.Session) error {
	return v.err
}

func newTestStore() (*Store, *auth.Session) {
	return New(&stubVerifier{}), &auth.Session{Token: "test"}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(expected)), "expected %s, got %s", expected, got)
}

func Test_AddProduct(t *testing.T) {
	t.Run("inserts entry with empty cost history", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		// when
		err := s.AddProduct(sess, "Widget", "A widget", dec("3.50"), 5)
		// then
		require.NoError(t, err)
		products := s.ListInventory()
		require.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name)
		assert.Equal(t, "A widget", products[0].Description)
		assert.Equal(t, int64(5), products[0].Quantity)
		assert.Equal(t, int64(0), products[0].TotalPurchasedQty)
		assertDecimal(t, "0", products[0].TotalCost)
	})

	t.Run("duplicate name leaves existing entry unchanged", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		require.NoError(t, s.AddProduct(sess, "Widget", "original", dec("3.50"), 5))
		before := s.ListInventory()
		// when
		err := s.AddProduct(sess, "Widget", "replacement", dec("9.99"), 1)
		// then
		assert.ErrorIs(t, err, ErrDuplicateProduct)
		assert.Equal(t, before, s.ListInventory())
	})
}

func Test_EditProduct(t *testing.T) {
	t.Run("overwrites description, price and quantity only", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
		require.NoError(t, err)
		// when
		err = s.EditProduct(sess, "Widget", "edited", dec("4.00"), 3)
		// then
		require.NoError(t, err)
		p := s.ListInventory()[0]
		assert.Equal(t, "edited", p.Description)
		assertDecimal(t, "4.00", p.Price)
		assert.Equal(t, int64(3), p.Quantity)
		// cost history untouched
		assertDecimal(t, "20.00", p.TotalCost)
		assert.Equal(t, int64(10), p.TotalPurchasedQty)
	})

	t.Run("unknown product", func(t *testing.T) {
		s, sess := newTestStore()
		err := s.EditProduct(sess, "Ghost", "d", dec("1"), 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func Test_DeleteProduct(t *testing.T) {
	t.Run("removes entry and its cost history", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		require.NoError(t, s.AddProduct(sess, "Widget", "d", dec("1.00"), 1))
		// when
		err := s.DeleteProduct(sess, "Widget")
		// then
		require.NoError(t, err)
		assert.Empty(t, s.ListInventory())
	})

	t.Run("unknown name leaves inventory unchanged", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		require.NoError(t, s.AddProduct(sess, "Widget", "d", dec("1.00"), 1))
		before := s.ListInventory()
		// when
		err := s.DeleteProduct(sess, "Ghost")
		// then
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, before, s.ListInventory())
	})
}

func Test_RecordSale(t *testing.T) {
	t.Run("decrements stock and fixes profit from prior average cost", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
		require.NoError(t, err)
		// when
		sale, err := s.RecordSale(sess, "Widget", 4, dec("5.00"))
		// then
		require.NoError(t, err)
		assertDecimal(t, "12.00", sale.Profit)
		assert.Equal(t, int64(4), sale.Quantity)
		assert.NotEmpty(t, sale.ID)

		p := s.ListInventory()[0]
		assert.Equal(t, int64(6), p.Quantity)
		report := s.Reports()
		require.Len(t, report.Sales, 1)
		assertDecimal(t, "12.00", report.Sales[0].Profit)
	})

	t.Run("insufficient stock mutates nothing and appends nothing", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		_, err := s.RecordPurchase(sess, "Widget", 3, dec("2.00"))
		require.NoError(t, err)
		before := s.ListInventory()
		// when
		_, err = s.RecordSale(sess, "Widget", 4, dec("5.00"))
		// then
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, before, s.ListInventory())
		assert.Empty(t, s.Reports().Sales)
	})

	t.Run("unknown product appends no record", func(t *testing.T) {
		s, sess := newTestStore()
		_, err := s.RecordSale(sess, "Ghost", 1, dec("5.00"))
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Empty(t, s.Reports().Sales)
		assert.Empty(t, s.ListInventory())
	})

	t.Run("sale at exactly current stock drains it to zero", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		_, err := s.RecordPurchase(sess, "Widget", 5, dec("1.00"))
		require.NoError(t, err)
		// when
		_, err = s.RecordSale(sess, "Widget", 5, dec("2.00"))
		// then
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.ListInventory()[0].Quantity)
	})
}

func Test_RecordPurchase(t *testing.T) {
	t.Run("unknown product is created with markup and placeholder", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		// when
		purchase, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
		// then
		require.NoError(t, err)
		assert.NotEmpty(t, purchase.ID)
		p := s.ListInventory()[0]
		assert.Equal(t, "No description", p.Description)
		assertDecimal(t, "2.20", p.Price)
		assert.Equal(t, int64(10), p.Quantity)
		assertDecimal(t, "20.00", p.TotalCost)
		assert.Equal(t, int64(10), p.TotalPurchasedQty)
		require.Len(t, s.Reports().Purchases, 1)
	})

	t.Run("existing product accumulates cost history", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		require.NoError(t, s.AddProduct(sess, "Widget", "d", dec("10.00"), 2))
		// when
		_, err := s.RecordPurchase(sess, "Widget", 3, dec("4.00"))
		// then
		require.NoError(t, err)
		p := s.ListInventory()[0]
		assert.Equal(t, int64(5), p.Quantity)
		assertDecimal(t, "12.00", p.TotalCost)
		assert.Equal(t, int64(3), p.TotalPurchasedQty)
		// purchase price below selling price: no re-pricing
		assertDecimal(t, "10.00", p.Price)
	})

	t.Run("purchase price above selling price triggers the markup rule", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		require.NoError(t, s.AddProduct(sess, "Widget", "d", dec("3.00"), 0))
		// when
		_, err := s.RecordPurchase(sess, "Widget", 1, dec("5.00"))
		// then
		require.NoError(t, err)
		assertDecimal(t, "5.50", s.ListInventory()[0].Price)
	})

	t.Run("every successful purchase appends one record", func(t *testing.T) {
		// given
		s, sess := newTestStore()
		// when
		_, err := s.RecordPurchase(sess, "Widget", 1, dec("1.00"))
		require.NoError(t, err)
		_, err = s.RecordPurchase(sess, "Widget", 2, dec("1.50"))
		require.NoError(t, err)
		// then
		assert.Len(t, s.Reports().Purchases, 2)
	})
}

func Test_AccessDenied(t *testing.T) {
	// given
	s := New(&stubVerifier{err: auth.ErrInvalidSession})
	seed := New(&stubVerifier{})
	_, err := seed.RecordPurchase(&auth.Session{Token: "t"}, "Widget", 5, dec("1.00"))
	require.NoError(t, err)
	s.Restore(seed.Snapshot())
	before := s.ListInventory()

	testCases := []struct {
		name string
		op   func(sess *auth.Session) error
	}{
		{"AddProduct", func(sess *auth.Session) error {
			return s.AddProduct(sess, "New", "d", dec("1.00"), 1)
		}},
		{"EditProduct", func(sess *auth.Session) error {
			return s.EditProduct(sess, "Widget", "d", dec("1.00"), 1)
		}},
		{"DeleteProduct", func(sess *auth.Session) error {
			return s.DeleteProduct(sess, "Widget")
		}},
		{"RecordSale", func(sess *auth.Session) error {
			_, err := s.RecordSale(sess, "Widget", 1, dec("2.00"))
			return err
		}},
		{"RecordPurchase", func(sess *auth.Session) error {
			_, err := s.RecordPurchase(sess, "Widget", 1, dec("2.00"))
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := tc.op(nil)
			// then
			assert.ErrorIs(t, err, ErrAccessDenied)
			assert.Equal(t, before, s.ListInventory())
		})
	}

	t.Run("read-only operations bypass the gate", func(t *testing.T) {
		assert.Len(t, s.ListInventory(), 1)
		assert.Len(t, s.Reports().Purchases, 1)
	})
}

func Test_ListInventory_SortedByName(t *testing.T) {
	// given
	s, sess := newTestStore()
	for _, name := range []string{"Pliers", "Anvil", "Mallet"} {
		require.NoError(t, s.AddProduct(sess, name, "d", dec("1.00"), 1))
	}
	// when
	products := s.ListInventory()
	// then
	require.Len(t, products, 3)
	assert.Equal(t, "Anvil", products[0].Name)
	assert.Equal(t, "Mallet", products[1].Name)
	assert.Equal(t, "Pliers", products[2].Name)
}

func Test_Reports_Totals(t *testing.T) {
	// given
	s, sess := newTestStore()
	_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
	require.NoError(t, err)
	_, err = s.RecordPurchase(sess, "Anvil", 2, dec("30.00"))
	require.NoError(t, err)
	_, err = s.RecordSale(sess, "Widget", 4, dec("5.00"))
	require.NoError(t, err)
	_, err = s.RecordSale(sess, "Anvil", 1, dec("40.00"))
	require.NoError(t, err)
	// when
	report := s.Reports()
	// then
	assertDecimal(t, "60.00", report.TotalRevenue)      // 4*5 + 1*40
	assertDecimal(t, "22.00", report.TotalProfit)       // 12 + 10
	assertDecimal(t, "80.00", report.TotalPurchaseCost) // 20 + 60
	require.Len(t, report.Inventory, 2)
	assert.Equal(t, "Anvil", report.Inventory[0].Name)
}

func Test_WidgetScenario(t *testing.T) {
	// given an empty store
	s, sess := newTestStore()

	// when ten widgets are bought at 2.00
	_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
	require.NoError(t, err)

	// then the entry carries the full cost history and the marked-up price
	p := s.ListInventory()[0]
	assert.Equal(t, int64(10), p.Quantity)
	assertDecimal(t, "20.0", p.TotalCost)
	assert.Equal(t, int64(10), p.TotalPurchasedQty)
	assertDecimal(t, "2.20", p.Price)

	// when four are sold at 5.00
	sale, err := s.RecordSale(sess, "Widget", 4, dec("5.00"))
	require.NoError(t, err)

	// then stock drops to six and the profit is (5.00 - 2.00) * 4
	assert.Equal(t, int64(6), s.ListInventory()[0].Quantity)
	assertDecimal(t, "12.00", sale.Profit)
	require.Len(t, s.Reports().Sales, 1)
}

func Test_SnapshotRestore(t *testing.T) {
	// given
	s, sess := newTestStore()
	_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
	require.NoError(t, err)
	_, err = s.RecordSale(sess, "Widget", 4, dec("5.00"))
	require.NoError(t, err)

	// when
	inventory, sales, purchases := s.Snapshot()
	restored := New(&stubVerifier{})
	restored.Restore(inventory, sales, purchases)

	// then
	assert.Equal(t, s.ListInventory(), restored.ListInventory())
	assert.Equal(t, s.Reports(), restored.Reports())

	// restored entries are copies, not shared with the snapshot
	_, err = restored.RecordSale(sess, "Widget", 1, dec("5.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), inventory["Widget"].Quantity)
}

func Test_AverageCost_AfterMixedHistory(t *testing.T) {
	// given purchases at different prices
	s, sess := newTestStore()
	_, err := s.RecordPurchase(sess, "Widget", 10, dec("2.00"))
	require.NoError(t, err)
	_, err = s.RecordPurchase(sess, "Widget", 10, dec("4.00"))
	require.NoError(t, err)

	// then the average spans the whole history
	p := s.ListInventory()[0]
	assertDecimal(t, "3.00", p.AverageCost())

	// and sales never move it
	_, err = s.RecordSale(sess, "Widget", 15, dec("6.00"))
	require.NoError(t, err)
	assertDecimal(t, "3.00", s.ListInventory()[0].AverageCost())
}
