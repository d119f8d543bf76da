/*
seed.go - Demo data loading for development and dashboard demos

PURPOSE:
  Loads a small deterministic catalog (categories, products, customers) and
  a spread of historical sales so the dashboard charts have something to
  show. Sales are written the same way the engine writes them: price
  snapshots, computed subtotals, stock decremented with a zero floor.

ENDPOINTS:
  POST /api/demo/seed   Wipe and reload demo data
  POST /api/demo/reset  Wipe all data

SEE ALSO:
  - handlers.go: Handler context
  - store/sqlite: Reset implementation
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mercato/sales-engine/sales"
)

// Resetter is implemented by stores that can wipe all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// SeedDemo wipes the store and loads the demo dataset.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	counts, err := h.loadDemoData(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// ResetDemo wipes all data.
func (h *Handler) ResetDemo(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Store reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		return fmt.Errorf("store does not support reset")
	}
	return resetter.Reset(ctx)
}

// demoSale describes one historical sale to load.
type demoSale struct {
	customer string
	month    time.Month
	day      int
	payment  string
	items    []sales.LineRequest
}

func (h *Handler) loadDemoData(ctx context.Context) (map[string]int, error) {
	year := time.Now().UTC().Year()

	categories := []sales.Category{
		{ID: "cat-beverages", Name: "Beverages", Description: "Drinks and juices"},
		{ID: "cat-food", Name: "Food", Description: "Groceries and snacks"},
		{ID: "cat-hygiene", Name: "Hygiene", Description: "Personal care"},
		{ID: "cat-electronics", Name: "Electronics", Description: "Small electronics"},
		{ID: "cat-clothing", Name: "Clothing", Description: "Apparel"},
	}

	products := []sales.Product{
		{ID: "prod-coffee", Name: "Ground Coffee 500g", UnitPrice: dec("12.50"), Stock: 120, CategoryID: "cat-beverages"},
		{ID: "prod-juice", Name: "Orange Juice 1L", UnitPrice: dec("3.80"), Stock: 200, CategoryID: "cat-beverages"},
		{ID: "prod-pasta", Name: "Pasta 1kg", UnitPrice: dec("2.40"), Stock: 150, CategoryID: "cat-food"},
		{ID: "prod-rice", Name: "Rice 5kg", UnitPrice: dec("8.90"), Stock: 90, CategoryID: "cat-food"},
		{ID: "prod-soap", Name: "Hand Soap", UnitPrice: dec("1.95"), Stock: 300, CategoryID: "cat-hygiene"},
		{ID: "prod-earbuds", Name: "Wireless Earbuds", UnitPrice: dec("45.00"), Stock: 40, CategoryID: "cat-electronics"},
		{ID: "prod-charger", Name: "USB-C Charger", UnitPrice: dec("18.00"), Stock: 60, CategoryID: "cat-electronics"},
		{ID: "prod-tshirt", Name: "Cotton T-Shirt", UnitPrice: dec("9.99"), Stock: 80, CategoryID: "cat-clothing"},
	}

	customers := []sales.Customer{
		{ID: "cust-garcia", Name: "Ana Garcia", Email: "ana.garcia@example.com", Phone: "555-0101", Address: "12 Market St"},
		{ID: "cust-lopez", Name: "Luis Lopez", Email: "luis.lopez@example.com", Phone: "555-0102", Address: "48 Elm Ave"},
		{ID: "cust-chen", Name: "Wei Chen", Email: "wei.chen@example.com", Phone: "555-0103", Address: "7 Harbor Rd"},
		{ID: "cust-okafor", Name: "Ngozi Okafor", Email: "n.okafor@example.com", Phone: "555-0104", Address: "23 Oak Ln"},
		{ID: "cust-silva", Name: "Marta Silva", Email: "marta.silva@example.com", Phone: "555-0105", Address: "90 Pine Blvd"},
	}

	demoSales := []demoSale{
		{customer: "cust-garcia", month: time.January, day: 12, payment: "Cash",
			items: []sales.LineRequest{{ProductID: "prod-coffee", Quantity: 2}, {ProductID: "prod-juice", Quantity: 6}}},
		{customer: "cust-lopez", month: time.February, day: 3, payment: "Card",
			items: []sales.LineRequest{{ProductID: "prod-earbuds", Quantity: 1}}},
		{customer: "cust-chen", month: time.February, day: 20, payment: "Transfer",
			items: []sales.LineRequest{{ProductID: "prod-rice", Quantity: 3}, {ProductID: "prod-pasta", Quantity: 5}}},
		{customer: "cust-okafor", month: time.March, day: 8, payment: "Cash",
			items: []sales.LineRequest{{ProductID: "prod-soap", Quantity: 10}, {ProductID: "prod-tshirt", Quantity: 2}}},
		{customer: "cust-silva", month: time.April, day: 15, payment: "Card",
			items: []sales.LineRequest{{ProductID: "prod-charger", Quantity: 2}, {ProductID: "prod-earbuds", Quantity: 1}}},
		{customer: "cust-garcia", month: time.May, day: 2, payment: "Card",
			items: []sales.LineRequest{{ProductID: "prod-coffee", Quantity: 4}}},
		{customer: "cust-lopez", month: time.June, day: 27, payment: "Cash",
			items: []sales.LineRequest{{ProductID: "prod-juice", Quantity: 12}, {ProductID: "prod-pasta", Quantity: 2}}},
		{customer: "cust-chen", month: time.June, day: 30, payment: "Transfer",
			items: []sales.LineRequest{{ProductID: "prod-tshirt", Quantity: 5}}},
	}

	err := h.Store.WithTx(ctx, func(s sales.Store) error {
		now := time.Now().UTC()
		for _, c := range categories {
			if err := s.SaveCategory(ctx, c); err != nil {
				return err
			}
		}
		for _, p := range products {
			if err := s.SaveProduct(ctx, p); err != nil {
				return err
			}
		}
		for _, c := range customers {
			c.CreatedAt = now
			if err := s.SaveCustomer(ctx, c); err != nil {
				return err
			}
		}

		// Record sales the way the engine does: price snapshot, subtotal,
		// stock decrement floored at zero.
		for i, ds := range demoSales {
			var items []sales.LineItem
			total := decimal.Zero
			for _, req := range ds.items {
				product, err := s.GetProduct(ctx, req.ProductID)
				if err != nil {
					return err
				}
				subtotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
				total = total.Add(subtotal)

				next := *product
				next.Stock = product.Stock - req.Quantity
				if next.Stock < 0 {
					next.Stock = 0
				}
				if err := s.SaveProduct(ctx, next); err != nil {
					return err
				}
				items = append(items, sales.LineItem{
					ProductID: product.ID,
					Quantity:  req.Quantity,
					UnitPrice: product.UnitPrice,
					Subtotal:  subtotal,
				})
			}

			sale := sales.Sale{
				ID:            sales.SaleID(fmt.Sprintf("sale-demo-%d", i+1)),
				CustomerID:    sales.CustomerID(ds.customer),
				Items:         items,
				Date:          time.Date(year, ds.month, ds.day, 10, 0, 0, 0, time.UTC),
				Total:         total,
				PaymentMethod: ds.payment,
				CreatedAt:     now,
			}
			if err := s.CreateSale(ctx, sale); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]int{
		"categories": len(categories),
		"products":   len(products),
		"customers":  len(customers),
		"sales":      len(demoSales),
	}, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
