/*
reporting.go - Reporting Engine: read-only aggregation over sales

PURPOSE:
  Produces the time-series and categorical summaries consumed by dashboards.
  Never mutates state. Each report is a sequence of relational steps
  (filter, join, group-by with sum, sort, limit) computed in memory over the
  store's query surface, so any Store implementation serves it unchanged.

REPORTS:
  MonthlyRevenue:    sale totals bucketed by calendar month of the sale date
  RevenueByCategory: line-item subtotals joined product->category, grouped
                     by category name; dangling links fall into Uncategorized
  TopProducts:       line items grouped by product, ranked by quantity sold

CONSISTENCY:
  Reports read committed state as of query time. No ordering guarantee
  relative to concurrent writes beyond that.

SEE ALSO:
  - engine.go: The write-side companion
  - store.go: Query surface consumed here
*/
package sales

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTopProductsLimit applies when TopProducts is called with limit <= 0.
const DefaultTopProductsLimit = 10

// Reporter computes aggregated reports over persisted sales.
type Reporter struct {
	store Store
}

// NewReporter creates a Reporter over the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// =============================================================================
// MONTHLY REVENUE
// =============================================================================

// MonthlyRevenue partitions all sales dated within the given calendar year by
// month and sums their totals. The result always has 12 entries ordered
// January through December; months with no sales report zero.
func (r *Reporter) MonthlyRevenue(ctx context.Context, year int) (*MonthlyRevenue, error) {
	from := yearStart(year)
	to := yearStart(year + 1)
	sales, err := r.store.QuerySales(ctx, SaleFilter{From: &from, To: &to})
	if err != nil {
		return nil, &PersistenceError{Op: "query sales", Err: err}
	}

	report := &MonthlyRevenue{Year: year}
	for _, s := range sales {
		// QuerySales bounds are inclusive; exclude the Jan 1 of year+1 edge.
		if !s.Date.Before(to) {
			continue
		}
		m := int(s.Date.Month()) - 1
		report.Totals[m] = report.Totals[m].Add(s.Total)
	}
	return report, nil
}

// =============================================================================
// REVENUE BY CATEGORY
// =============================================================================

// RevenueByCategory expands every sale in the optional date range into its
// line items, joins each item's product to its category, and sums subtotals
// per category name, ordered by revenue descending. Items whose product or
// category link is missing are grouped under Uncategorized.
func (r *Reporter) RevenueByCategory(ctx context.Context, f SaleFilter) ([]CategoryRevenue, error) {
	sales, err := r.store.QuerySales(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "query sales", Err: err}
	}

	categoryOf, err := r.productCategoryNames(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, s := range sales {
		for _, it := range s.Items {
			name, ok := categoryOf[it.ProductID]
			if !ok {
				name = Uncategorized
			}
			totals[name] = totals[name].Add(it.Subtotal)
		}
	}

	rows := make([]CategoryRevenue, 0, len(totals))
	for name, sum := range totals {
		rows = append(rows, CategoryRevenue{Category: name, Revenue: sum})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Revenue.Equal(rows[j].Revenue) {
			return rows[i].Revenue.GreaterThan(rows[j].Revenue)
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// productCategoryNames builds the product -> category-name join map.
// Products with an empty or dangling category reference map to Uncategorized.
func (r *Reporter) productCategoryNames(ctx context.Context) (map[ProductID]string, error) {
	categories, err := r.store.ListCategories(ctx, "")
	if err != nil {
		return nil, &PersistenceError{Op: "list categories", Err: err}
	}
	nameByID := make(map[CategoryID]string, len(categories))
	for _, c := range categories {
		nameByID[c.ID] = c.Name
	}

	products, err := r.store.ListProducts(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	result := make(map[ProductID]string, len(products))
	for _, p := range products {
		if name, ok := nameByID[p.CategoryID]; ok && p.CategoryID != "" {
			result[p.ID] = name
		} else {
			result[p.ID] = Uncategorized
		}
	}
	return result, nil
}

// =============================================================================
// TOP PRODUCTS
// =============================================================================

// TopProducts groups all line items across all sales by product, summing
// quantity and revenue independently, ordered by total quantity sold
// descending and truncated to limit (default 10). Deleted products keep
// their rank; their historical name is no longer resolvable.
func (r *Reporter) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	sales, err := r.store.QuerySales(ctx, SaleFilter{})
	if err != nil {
		return nil, &PersistenceError{Op: "query sales", Err: err}
	}

	type acc struct {
		quantity int
		revenue  decimal.Decimal
	}
	byProduct := make(map[ProductID]*acc)
	for _, s := range sales {
		for _, it := range s.Items {
			a, ok := byProduct[it.ProductID]
			if !ok {
				a = &acc{}
				byProduct[it.ProductID] = a
			}
			a.quantity += it.Quantity
			a.revenue = a.revenue.Add(it.Subtotal)
		}
	}

	products, err := r.store.ListProducts(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	nameByID := make(map[ProductID]string, len(products))
	for _, p := range products {
		nameByID[p.ID] = p.Name
	}

	rows := make([]ProductSales, 0, len(byProduct))
	for id, a := range byProduct {
		rows = append(rows, ProductSales{
			ProductID: id,
			Name:      nameByID[id],
			Quantity:  a.quantity,
			Revenue:   a.revenue,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		if !rows[i].Revenue.Equal(rows[j].Revenue) {
			return rows[i].Revenue.GreaterThan(rows[j].Revenue)
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
