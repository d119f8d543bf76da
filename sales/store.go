/*
store.go - Persistence interfaces for the sales engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:   CRUD for catalog entities plus the filterable sale query surface
  TxStore: Store with transactional execution (WithTx)

TRANSACTION CONTRACT:
  Every Sale Engine operation performs multiple read-modify-write steps
  (stock reads, stock writes, sale write). TxStore.WithTx must make that
  sequence atomic: if fn returns an error, every write made through the
  Store it received is rolled back. The engine relies on this to avoid
  leaking stock decrements when an operation fails mid-batch.

MISSING RECORDS:
  Get* methods return (nil, nil) for absent records; the engine decides
  whether absence is an error. Delete* and Update* return a *NotFoundError
  when the target does not exist.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - sales/store:  In-memory for testing and dev mode

SEE ALSO:
  - engine.go: Uses TxStore
  - reporting.go: Uses the read-only subset
*/
package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTERS
// =============================================================================

// SaleFilter narrows QuerySales. Nil/empty fields mean "no constraint".
type SaleFilter struct {
	CustomerID    CustomerID
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// CategoryStore persists categories.
type CategoryStore interface {
	// SaveCategory inserts or fully replaces a category.
	SaveCategory(ctx context.Context, c Category) error
	GetCategory(ctx context.Context, id CategoryID) (*Category, error)
	// ListCategories returns categories ordered by name. A non-empty
	// nameContains restricts to names containing it, case-insensitively.
	ListCategories(ctx context.Context, nameContains string) ([]Category, error)
	// DeleteCategory removes a category. Products referencing it keep their
	// now-dangling reference; there is no cascade.
	DeleteCategory(ctx context.Context, id CategoryID) error
}

// CustomerStore persists customers.
type CustomerStore interface {
	SaveCustomer(ctx context.Context, c Customer) error
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)
	// ListCustomers returns customers newest first.
	ListCustomers(ctx context.Context) ([]Customer, error)
	DeleteCustomer(ctx context.Context, id CustomerID) error
}

// ProductStore persists products, including the stock writes performed by
// the Sale Engine.
type ProductStore interface {
	SaveProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id ProductID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, id ProductID) error
}

// SaleStore persists sales atomically with their line items. No partial-item
// sales exist: a sale row and its items are written together.
type SaleStore interface {
	CreateSale(ctx context.Context, s Sale) error
	GetSale(ctx context.Context, id SaleID) (*Sale, error)
	// UpdateSale replaces the sale and its full item list.
	UpdateSale(ctx context.Context, s Sale) error
	DeleteSale(ctx context.Context, id SaleID) error
	// QuerySales returns sales matching the filter, newest first.
	QuerySales(ctx context.Context, f SaleFilter) ([]Sale, error)
}

// Store is the full persistence surface the engine and reporter consume.
type Store interface {
	CategoryStore
	CustomerStore
	ProductStore
	SaleStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, every write is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
