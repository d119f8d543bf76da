package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercato/sales-engine/sales"
	"github.com/mercato/sales-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testProduct(id, name, price string, stock int) sales.Product {
	return sales.Product{
		ID:        sales.ProductID(id),
		Name:      name,
		UnitPrice: dec(price),
		Stock:     stock,
	}
}

func testSale(id, customer string, date time.Time, payment string, items ...sales.LineItem) sales.Sale {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return sales.Sale{
		ID:            sales.SaleID(id),
		CustomerID:    sales.CustomerID(customer),
		Items:         items,
		Date:          date,
		Total:         total,
		PaymentMethod: payment,
		CreatedAt:     date,
	}
}

func item(productID, price string, qty int) sales.LineItem {
	unit := dec(price)
	return sales.LineItem{
		ProductID: sales.ProductID(productID),
		Quantity:  qty,
		UnitPrice: unit,
		Subtotal:  unit.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// =============================================================================
// CATALOG CRUD
// =============================================================================

func TestSQLiteStore_CategoryCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Save and read back
	c := sales.Category{ID: "cat-1", Name: "Beverages", Description: "Drinks"}
	require.NoError(t, store.SaveCategory(ctx, c))

	got, err := store.GetCategory(ctx, "cat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c, *got)

	// Save again acts as replace
	c.Name = "Drinks"
	require.NoError(t, store.SaveCategory(ctx, c))
	got, err = store.GetCategory(ctx, "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "Drinks", got.Name)

	// Absent reads are nil, not errors
	got, err = store.GetCategory(ctx, "cat-ghost")
	require.NoError(t, err)
	assert.Nil(t, got)

	// List is name-ordered and substring-filterable
	require.NoError(t, store.SaveCategory(ctx, sales.Category{ID: "cat-2", Name: "Apparel"}))
	all, err := store.ListCategories(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Apparel", all[0].Name)
	assert.Equal(t, "Drinks", all[1].Name)

	filtered, err := store.ListCategories(ctx, "rin")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Drinks", filtered[0].Name)

	// Delete, then deleting again reports not found
	require.NoError(t, store.DeleteCategory(ctx, "cat-1"))
	err = store.DeleteCategory(ctx, "cat-1")
	require.Error(t, err)
	assert.True(t, sales.IsNotFound(err))
}

func TestSQLiteStore_CustomerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := sales.Customer{
		ID:        "cust-1",
		Name:      "Ana Garcia",
		Email:     "ana@example.com",
		Phone:     "555-0101",
		Address:   "12 Market St",
		CreatedAt: time.Date(2026, time.February, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveCustomer(ctx, c))

	got, err := store.GetCustomer(ctx, "cust-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.Email, got.Email)
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

	// Newest first
	newer := sales.Customer{
		ID:        "cust-2",
		Name:      "Luis Lopez",
		CreatedAt: time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveCustomer(ctx, newer))

	all, err := store.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sales.CustomerID("cust-2"), all[0].ID)
}

func TestSQLiteStore_ProductDecimalPrecision(t *testing.T) {
	// GIVEN: A product priced 19.99
	// WHEN: Round-tripping through the store
	// THEN: The price survives exactly, no float drift

	store := newTestStore(t)
	ctx := context.Background()

	p := testProduct("prod-1", "Earbuds", "19.99", 40)
	p.CategoryID = "cat-electronics"
	require.NoError(t, store.SaveProduct(ctx, p))

	got, err := store.GetProduct(ctx, "prod-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.UnitPrice.Equal(dec("19.99")), "got %s", got.UnitPrice)
	assert.Equal(t, 40, got.Stock)
	assert.Equal(t, sales.CategoryID("cat-electronics"), got.CategoryID)

	// Stock update via replace
	got.Stock = 35
	require.NoError(t, store.SaveProduct(ctx, *got))
	again, err := store.GetProduct(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 35, again.Stock)
}

// =============================================================================
// SALES
// =============================================================================

func TestSQLiteStore_SalePersistsItemsInOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	date := time.Date(2026, time.April, 10, 15, 0, 0, 0, time.UTC)
	sale := testSale("sale-1", "cust-1", date, "Cash",
		item("prod-b", "8.90", 3),
		item("prod-a", "2.40", 5),
		item("prod-c", "1.95", 1),
	)
	require.NoError(t, store.CreateSale(ctx, sale))

	got, err := store.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 3)
	assert.Equal(t, sales.ProductID("prod-b"), got.Items[0].ProductID, "entry order preserved")
	assert.Equal(t, sales.ProductID("prod-a"), got.Items[1].ProductID)
	assert.Equal(t, sales.ProductID("prod-c"), got.Items[2].ProductID)
	assert.True(t, got.Total.Equal(sale.Total), "got %s want %s", got.Total, sale.Total)
	assert.True(t, got.Date.Equal(date))
	assert.Equal(t, "Cash", got.PaymentMethod)
}

func TestSQLiteStore_UpdateSaleReplacesItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	date := time.Date(2026, time.April, 10, 15, 0, 0, 0, time.UTC)
	sale := testSale("sale-1", "cust-1", date, "Cash", item("prod-a", "2.40", 5))
	require.NoError(t, store.CreateSale(ctx, sale))

	replacement := testSale("sale-1", "cust-2", date, "Card",
		item("prod-b", "8.90", 1), item("prod-c", "1.95", 2))
	require.NoError(t, store.UpdateSale(ctx, replacement))

	got, err := store.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, sales.ProductID("prod-b"), got.Items[0].ProductID)
	assert.Equal(t, sales.CustomerID("cust-2"), got.CustomerID)
	assert.Equal(t, "Card", got.PaymentMethod)
	assert.True(t, got.Total.Equal(dec("12.80")), "got %s", got.Total)
}

func TestSQLiteStore_UpdateSale_UnknownSale_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateSale(context.Background(),
		testSale("sale-ghost", "", time.Now().UTC(), ""))

	require.Error(t, err)
	assert.True(t, sales.IsNotFound(err))
}

func TestSQLiteStore_DeleteSaleCascadesItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sale := testSale("sale-1", "cust-1", time.Now().UTC().Truncate(time.Second), "Cash",
		item("prod-a", "2.40", 5))
	require.NoError(t, store.CreateSale(ctx, sale))

	require.NoError(t, store.DeleteSale(ctx, "sale-1"))

	got, err := store.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = store.DeleteSale(ctx, "sale-1")
	require.Error(t, err)
	assert.True(t, sales.IsNotFound(err))
}

func TestSQLiteStore_QuerySalesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSale(ctx, testSale("sale-jan", "cust-1", jan, "Cash", item("prod-a", "10", 1))))
	require.NoError(t, store.CreateSale(ctx, testSale("sale-feb", "cust-2", feb, "Card", item("prod-a", "10", 5))))
	require.NoError(t, store.CreateSale(ctx, testSale("sale-mar", "cust-1", mar, "Transfer", item("prod-a", "10", 10))))

	// Unfiltered, newest first
	all, err := store.QuerySales(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, sales.SaleID("sale-mar"), all[0].ID)
	assert.Equal(t, sales.SaleID("sale-jan"), all[2].ID)

	// By customer
	byCustomer, err := store.QuerySales(ctx, sales.SaleFilter{CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	// Date range, bounds inclusive
	result, err := store.QuerySales(ctx, sales.SaleFilter{From: &feb, To: &mar})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, sales.SaleID("sale-mar"), result[0].ID)

	// Payment method
	byPayment, err := store.QuerySales(ctx, sales.SaleFilter{PaymentMethod: "Card"})
	require.NoError(t, err)
	require.Len(t, byPayment, 1)
	assert.Equal(t, sales.SaleID("sale-feb"), byPayment[0].ID)

	// Total range
	min, max := dec("40"), dec("60")
	byTotal, err := store.QuerySales(ctx, sales.SaleFilter{MinTotal: &min, MaxTotal: &max})
	require.NoError(t, err)
	require.Len(t, byTotal, 1)
	assert.Equal(t, sales.SaleID("sale-feb"), byTotal[0].ID)

	// Items are loaded with query results
	require.Len(t, byTotal[0].Items, 1)
	assert.Equal(t, 5, byTotal[0].Items[0].Quantity)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLiteStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A product with stock 10
	// WHEN: A transaction decrements stock, then fails
	// THEN: The decrement is rolled back

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, testProduct("prod-a", "A", "4", 10)))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s sales.Store) error {
		p, err := s.GetProduct(ctx, "prod-a")
		if err != nil {
			return err
		}
		p.Stock = 1
		if err := s.SaveProduct(ctx, *p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetProduct(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestSQLiteStore_WithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, testProduct("prod-a", "A", "4", 10)))

	err := store.WithTx(ctx, func(s sales.Store) error {
		p, err := s.GetProduct(ctx, "prod-a")
		if err != nil {
			return err
		}
		p.Stock = 7
		return s.SaveProduct(ctx, *p)
	})
	require.NoError(t, err)

	got, err := store.GetProduct(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
}

// =============================================================================
// ENGINE INTEGRATION - same protocol as the memory store, but persisted
// =============================================================================

func TestSQLiteStore_EngineCreateAdjustsStock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	engine := sales.NewEngine(store)

	require.NoError(t, store.SaveProduct(ctx, testProduct("prod-a", "A", "12.50", 10)))

	sale, err := engine.Create(ctx, sales.CreateSaleCommand{
		CustomerID:    "cust-1",
		PaymentMethod: "Cash",
		Items:         []sales.LineRequest{{ProductID: "prod-a", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("50")), "got %s", sale.Total)

	p, err := store.GetProduct(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)

	require.NoError(t, engine.Delete(ctx, sale.ID))
	p, err = store.GetProduct(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock, "delete restores stock")
}

func TestSQLiteStore_EngineRollsBackPartialBatch(t *testing.T) {
	// GIVEN: A batch whose second line references a missing product
	// WHEN: Creating the sale through the engine
	// THEN: The first line's stock write does not survive

	store := newTestStore(t)
	ctx := context.Background()
	engine := sales.NewEngine(store)

	require.NoError(t, store.SaveProduct(ctx, testProduct("prod-a", "A", "3", 20)))

	_, err := engine.Create(ctx, sales.CreateSaleCommand{
		Items: []sales.LineRequest{
			{ProductID: "prod-a", Quantity: 5},
			{ProductID: "prod-ghost", Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, sales.IsNotFound(err))

	p, err := store.GetProduct(ctx, "prod-a")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Stock)

	all, err := store.QuerySales(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

// =============================================================================
// MAINTENANCE
// =============================================================================

func TestSQLiteStore_ResetWipesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCategory(ctx, sales.Category{ID: "cat-1", Name: "Food"}))
	require.NoError(t, store.SaveProduct(ctx, testProduct("prod-a", "A", "1", 1)))
	require.NoError(t, store.CreateSale(ctx, testSale("sale-1", "", time.Now().UTC(), "", item("prod-a", "1", 1))))

	require.NoError(t, store.Reset(ctx))

	categories, err := store.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, categories)
	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
	result, err := store.QuerySales(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, result)
}
