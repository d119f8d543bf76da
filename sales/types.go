/*
Package sales provides the core sales-management engine.

PURPOSE:
  This package contains the domain types and algorithms for recording sales
  transactions against shared inventory and for aggregating them into
  dashboard reports. The engine owns the create/update/delete protocol that
  keeps Product stock consistent with Sale records; the reporter is a pure
  read-only aggregation layer on top of the same store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product/Category/Customer: catalog entities referenced by sales
  - Sale: a transaction with an ordered list of line items
  - LineItem: product + quantity + price snapshot taken at sale time
  - Typed IDs: prevent mixing product/sale/customer identifiers

DESIGN PRINCIPLES:
  1. Value semantics: records are loaded as snapshots, recomputed, and written
     back whole; no shared in-memory mutation across operation boundaries
  2. Precision: uses decimal.Decimal for all monetary math
  3. Weak references: category and customer links are lookups, not ownership;
     a dangling reference is tolerated everywhere it can occur
  4. Price snapshots: line items copy the product price at sale time so
     historical sales stay accurate when catalog prices change

SEE ALSO:
  - engine.go: Sale Engine (create/update/delete protocol)
  - reporting.go: Reporting Engine (aggregation queries)
  - store.go: Persistence interfaces
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type CategoryID string
type CustomerID string
type SaleID string

// =============================================================================
// CATALOG ENTITIES
// =============================================================================

// Category groups products for reporting. Products hold a weak reference to
// it; deleting a category leaves its products pointing at nothing, which
// reporting buckets as Uncategorized.
type Category struct {
	ID          CategoryID
	Name        string
	Description string
}

// Uncategorized is the reporting bucket for sales of products whose category
// reference is empty or dangling.
const Uncategorized = "Uncategorized"

// Customer is an independent entity referenced weakly by sales.
type Customer struct {
	ID        CustomerID
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
}

// Product is the only contested shared mutable resource in the system: its
// Stock field is adjusted by the Sale Engine on every create/update/delete.
// Stock never goes below zero after a committed operation.
type Product struct {
	ID          ProductID
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Stock       int
	CategoryID  CategoryID // weak reference, may be empty or dangling
}

// =============================================================================
// SALE - A transaction with ordered line items
// =============================================================================

// LineItem is one product-quantity-price triple within a sale. It is embedded
// in the Sale and not independently addressable. UnitPrice is a snapshot of
// the product price at the time the sale was recorded.
type LineItem struct {
	ProductID ProductID
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Sale records products sold to a customer at a point in time.
// Invariant: Total equals the sum of item subtotals, and each subtotal equals
// UnitPrice * Quantity. Items keep entry order.
type Sale struct {
	ID            SaleID
	CustomerID    CustomerID // weak reference
	Items         []LineItem
	Date          time.Time
	Total         decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
}

// =============================================================================
// REPORT ROWS - Computed by the Reporting Engine
// =============================================================================

// MonthlyRevenue holds a calendar year of revenue, January through December.
// Months with no sales report zero.
type MonthlyRevenue struct {
	Year   int
	Totals [12]decimal.Decimal
}

// CategoryRevenue is one row of the revenue-by-category report.
type CategoryRevenue struct {
	Category string
	Revenue  decimal.Decimal
}

// ProductSales is one row of the top-products report. Quantity and Revenue
// are summed independently across all line items for the product.
type ProductSales struct {
	ProductID ProductID
	Name      string
	Quantity  int
	Revenue   decimal.Decimal
}
