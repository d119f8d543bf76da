/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements sales.Store and sales.TxStore using SQLite. In production, the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  categories:  Product groupings for reporting
  customers:   Buyers, weakly referenced by sales
  products:    Catalog entries carrying the live stock count
  sales:       One row per transaction
  sale_items:  Line items, keyed by (sale_id, position) to preserve entry order

TRANSACTION SUPPORT:
  WithTx runs a function against a transactional view of the store. The Sale
  Engine wraps every create/update/delete in WithTx so multi-item stock
  adjustments either commit together or roll back together. The store-wide
  mutex additionally serializes whole operations, which removes the stock
  read-modify-write race between concurrent requests.

DECIMALS:
  Monetary values are stored as TEXT produced by decimal.Decimal.String()
  to avoid floating-point drift. Total-range filters cast to REAL in SQL,
  which is precise enough for a comparison predicate.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/sales.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := sales.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - sales/store.go: Interface definitions
  - sales/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mercato/sales-engine/sales"
)

// Store implements sales.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		unit_price TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		category_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_products_category
		ON products(category_id);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		customer_id TEXT,
		sale_date TEXT NOT NULL,
		total TEXT NOT NULL,
		payment_method TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path for the list view (newest first) and the monthly report
	CREATE INDEX IF NOT EXISTS idx_sales_date
		ON sales(sale_date DESC);
	CREATE INDEX IF NOT EXISTS idx_sales_customer
		ON sales(customer_id);

	CREATE TABLE IF NOT EXISTS sale_items (
		sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		PRIMARY KEY (sale_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_sale_items_product
		ON sale_items(product_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query helpers
// serve direct calls and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// CATEGORIES
// =============================================================================

// SaveCategory inserts or replaces a category.
func (s *Store) SaveCategory(ctx context.Context, c sales.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCategory(ctx, s.db, c)
}

func saveCategory(ctx context.Context, q dbtx, c sales.Category) error {
	query := `
		INSERT INTO categories (id, name, description)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`
	_, err := q.ExecContext(ctx, query, c.ID, c.Name, nullString(c.Description))
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// GetCategory returns a category, or nil if absent.
func (s *Store) GetCategory(ctx context.Context, id sales.CategoryID) (*sales.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCategory(ctx, s.db, id)
}

func getCategory(ctx context.Context, q dbtx, id sales.CategoryID) (*sales.Category, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, description FROM categories WHERE id = ?", id)

	var c sales.Category
	var description sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &description); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	c.Description = description.String
	return &c, nil
}

// ListCategories returns categories ordered by name, optionally filtered by
// a case-insensitive name substring.
func (s *Store) ListCategories(ctx context.Context, nameContains string) ([]sales.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCategories(ctx, s.db, nameContains)
}

func listCategories(ctx context.Context, q dbtx, nameContains string) ([]sales.Category, error) {
	query := "SELECT id, name, description FROM categories"
	var args []any
	if nameContains != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+nameContains+"%")
	}
	query += " ORDER BY name ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var result []sales.Category
	for rows.Next() {
		var c sales.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Description = description.String
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteCategory removes a category. Products keep their dangling reference.
func (s *Store) DeleteCategory(ctx context.Context, id sales.CategoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCategory(ctx, s.db, id)
}

func deleteCategory(ctx context.Context, q dbtx, id sales.CategoryID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res, &sales.NotFoundError{Kind: "category", ID: string(id)})
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// SaveCustomer inserts or replaces a customer.
func (s *Store) SaveCustomer(ctx context.Context, c sales.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCustomer(ctx, s.db, c)
}

func saveCustomer(ctx context.Context, q dbtx, c sales.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address
	`
	_, err := q.ExecContext(ctx, query,
		c.ID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address),
		c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// GetCustomer returns a customer, or nil if absent.
func (s *Store) GetCustomer(ctx context.Context, id sales.CustomerID) (*sales.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, q dbtx, id sales.CustomerID) (*sales.Customer, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM customers WHERE id = ?", id)

	c, err := scanCustomer(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCustomers returns customers newest first.
func (s *Store) ListCustomers(ctx context.Context) ([]sales.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCustomers(ctx, s.db)
}

func listCustomers(ctx context.Context, q dbtx) ([]sales.Customer, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, email, phone, address, created_at FROM customers ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var result []sales.Customer
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanCustomer(scan func(...any) error) (*sales.Customer, error) {
	var c sales.Customer
	var email, phone, address sql.NullString
	var createdAt string
	if err := scan(&c.ID, &c.Name, &email, &phone, &address, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// DeleteCustomer removes a customer. Sales keep their weak reference.
func (s *Store) DeleteCustomer(ctx context.Context, id sales.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCustomer(ctx, s.db, id)
}

func deleteCustomer(ctx context.Context, q dbtx, id sales.CustomerID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireAffected(res, &sales.NotFoundError{Kind: "customer", ID: string(id)})
}

// =============================================================================
// PRODUCTS
// =============================================================================

// SaveProduct inserts or replaces a product, including its stock count.
func (s *Store) SaveProduct(ctx context.Context, p sales.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProduct(ctx, s.db, p)
}

func saveProduct(ctx context.Context, q dbtx, p sales.Product) error {
	query := `
		INSERT INTO products (id, name, description, unit_price, stock, category_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			unit_price = excluded.unit_price,
			stock = excluded.stock,
			category_id = excluded.category_id
	`
	_, err := q.ExecContext(ctx, query,
		p.ID, p.Name, nullString(p.Description), p.UnitPrice.String(), p.Stock,
		nullString(string(p.CategoryID)))
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// GetProduct returns a product, or nil if absent.
func (s *Store) GetProduct(ctx context.Context, id sales.ProductID) (*sales.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func getProduct(ctx context.Context, q dbtx, id sales.ProductID) (*sales.Product, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, description, unit_price, stock, category_id FROM products WHERE id = ?", id)

	p, err := scanProduct(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]sales.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProducts(ctx, s.db)
}

func listProducts(ctx context.Context, q dbtx) ([]sales.Product, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, description, unit_price, stock, category_id FROM products ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []sales.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanProduct(scan func(...any) error) (*sales.Product, error) {
	var p sales.Product
	var description, categoryID sql.NullString
	var unitPrice string
	if err := scan(&p.ID, &p.Name, &description, &unitPrice, &p.Stock, &categoryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Description = description.String
	p.UnitPrice = mustDecimal(unitPrice)
	p.CategoryID = sales.CategoryID(categoryID.String)
	return &p, nil
}

// DeleteProduct removes a product. Historical sale items keep the id.
func (s *Store) DeleteProduct(ctx context.Context, id sales.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteProduct(ctx, s.db, id)
}

func deleteProduct(ctx context.Context, q dbtx, id sales.ProductID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res, &sales.NotFoundError{Kind: "product", ID: string(id)})
}

// =============================================================================
// SALES
// =============================================================================

// CreateSale persists a sale and its line items atomically.
func (s *Store) CreateSale(ctx context.Context, sale sales.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return createSale(ctx, tx, sale)
	})
}

func createSale(ctx context.Context, q dbtx, sale sales.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, sale_date, total, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		sale.ID,
		nullString(string(sale.CustomerID)),
		sale.Date.UTC().Format(time.RFC3339),
		sale.Total.String(),
		nullString(sale.PaymentMethod),
		sale.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return insertItems(ctx, q, sale.ID, sale.Items)
}

func insertItems(ctx context.Context, q dbtx, saleID sales.SaleID, items []sales.LineItem) error {
	query := `
		INSERT INTO sale_items (sale_id, position, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, it := range items {
		_, err := q.ExecContext(ctx, query,
			saleID, i, it.ProductID, it.Quantity, it.UnitPrice.String(), it.Subtotal.String())
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}
	return nil
}

// GetSale returns a sale with its line items in entry order, or nil if absent.
func (s *Store) GetSale(ctx context.Context, id sales.SaleID) (*sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSale(ctx, s.db, id)
}

func getSale(ctx context.Context, q dbtx, id sales.SaleID) (*sales.Sale, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, customer_id, sale_date, total, payment_method, created_at FROM sales WHERE id = ?", id)

	sale, err := scanSale(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, q, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

func loadItems(ctx context.Context, q dbtx, saleID sales.SaleID) ([]sales.LineItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = ? ORDER BY position ASC
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	var items []sales.LineItem
	for rows.Next() {
		var it sales.LineItem
		var unitPrice, subtotal string
		if err := rows.Scan(&it.ProductID, &it.Quantity, &unitPrice, &subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		it.UnitPrice = mustDecimal(unitPrice)
		it.Subtotal = mustDecimal(subtotal)
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanSale(scan func(...any) error) (*sales.Sale, error) {
	var sale sales.Sale
	var customerID, paymentMethod sql.NullString
	var saleDate, total, createdAt string
	if err := scan(&sale.ID, &customerID, &saleDate, &total, &paymentMethod, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}
	sale.CustomerID = sales.CustomerID(customerID.String)
	sale.Date, _ = time.Parse(time.RFC3339, saleDate)
	sale.Total = mustDecimal(total)
	sale.PaymentMethod = paymentMethod.String
	sale.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sale, nil
}

// UpdateSale replaces the sale row and its full item list.
func (s *Store) UpdateSale(ctx context.Context, sale sales.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return updateSale(ctx, tx, sale)
	})
}

func updateSale(ctx context.Context, q dbtx, sale sales.Sale) error {
	query := `
		UPDATE sales
		SET customer_id = ?, sale_date = ?, total = ?, payment_method = ?
		WHERE id = ?
	`
	res, err := q.ExecContext(ctx, query,
		nullString(string(sale.CustomerID)),
		sale.Date.UTC().Format(time.RFC3339),
		sale.Total.String(),
		nullString(sale.PaymentMethod),
		sale.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if err := requireAffected(res, &sales.NotFoundError{Kind: "sale", ID: string(sale.ID)}); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM sale_items WHERE sale_id = ?", sale.ID); err != nil {
		return fmt.Errorf("failed to clear sale items: %w", err)
	}
	return insertItems(ctx, q, sale.ID, sale.Items)
}

// DeleteSale removes a sale; its items cascade.
func (s *Store) DeleteSale(ctx context.Context, id sales.SaleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteSale(ctx, s.db, id)
}

func deleteSale(ctx context.Context, q dbtx, id sales.SaleID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return requireAffected(res, &sales.NotFoundError{Kind: "sale", ID: string(id)})
}

// QuerySales returns sales matching the filter, newest first. Filter
// predicates push down into the WHERE clause.
func (s *Store) QuerySales(ctx context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, f)
}

func querySales(ctx context.Context, q dbtx, f sales.SaleFilter) ([]sales.Sale, error) {
	var conds []string
	var args []any

	if f.CustomerID != "" {
		conds = append(conds, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.From != nil {
		conds = append(conds, "sale_date >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		conds = append(conds, "sale_date <= ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.PaymentMethod != "" {
		conds = append(conds, "payment_method = ?")
		args = append(args, f.PaymentMethod)
	}
	if f.MinTotal != nil {
		conds = append(conds, "CAST(total AS REAL) >= ?")
		args = append(args, f.MinTotal.InexactFloat64())
	}
	if f.MaxTotal != nil {
		conds = append(conds, "CAST(total AS REAL) <= ?")
		args = append(args, f.MaxTotal.InexactFloat64())
	}

	query := "SELECT id, customer_id, sale_date, total, payment_method, created_at FROM sales"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sale_date DESC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var result []sales.Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := loadItems(ctx, q, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

// =============================================================================
// TRANSACTIONAL STORE (sales.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The store-wide
// lock is held for the duration, serializing whole engine operations.
func (s *Store) WithTx(ctx context.Context, fn func(store sales.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every Store call through the open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveCategory(ctx context.Context, c sales.Category) error {
	return saveCategory(ctx, ts.tx, c)
}

func (ts *txStore) GetCategory(ctx context.Context, id sales.CategoryID) (*sales.Category, error) {
	return getCategory(ctx, ts.tx, id)
}

func (ts *txStore) ListCategories(ctx context.Context, nameContains string) ([]sales.Category, error) {
	return listCategories(ctx, ts.tx, nameContains)
}

func (ts *txStore) DeleteCategory(ctx context.Context, id sales.CategoryID) error {
	return deleteCategory(ctx, ts.tx, id)
}

func (ts *txStore) SaveCustomer(ctx context.Context, c sales.Customer) error {
	return saveCustomer(ctx, ts.tx, c)
}

func (ts *txStore) GetCustomer(ctx context.Context, id sales.CustomerID) (*sales.Customer, error) {
	return getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) ListCustomers(ctx context.Context) ([]sales.Customer, error) {
	return listCustomers(ctx, ts.tx)
}

func (ts *txStore) DeleteCustomer(ctx context.Context, id sales.CustomerID) error {
	return deleteCustomer(ctx, ts.tx, id)
}

func (ts *txStore) SaveProduct(ctx context.Context, p sales.Product) error {
	return saveProduct(ctx, ts.tx, p)
}

func (ts *txStore) GetProduct(ctx context.Context, id sales.ProductID) (*sales.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) ListProducts(ctx context.Context) ([]sales.Product, error) {
	return listProducts(ctx, ts.tx)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id sales.ProductID) error {
	return deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) CreateSale(ctx context.Context, sale sales.Sale) error {
	return createSale(ctx, ts.tx, sale)
}

func (ts *txStore) GetSale(ctx context.Context, id sales.SaleID) (*sales.Sale, error) {
	return getSale(ctx, ts.tx, id)
}

func (ts *txStore) UpdateSale(ctx context.Context, sale sales.Sale) error {
	return updateSale(ctx, ts.tx, sale)
}

func (ts *txStore) DeleteSale(ctx context.Context, id sales.SaleID) error {
	return deleteSale(ctx, ts.tx, id)
}

func (ts *txStore) QuerySales(ctx context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	return querySales(ctx, ts.tx, f)
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all tables. Used by the demo loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"sale_items", "sales", "products", "customers", "categories"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to reset %s: %w", table, err)
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
