// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mercato/sales-engine/sales"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	categories map[sales.CategoryID]sales.Category
	customers  map[sales.CustomerID]sales.Customer
	products   map[sales.ProductID]sales.Product
	sales      map[sales.SaleID]sales.Sale
}

func NewMemory() *Memory {
	return &Memory{
		categories: make(map[sales.CategoryID]sales.Category),
		customers:  make(map[sales.CustomerID]sales.Customer),
		products:   make(map[sales.ProductID]sales.Product),
		sales:      make(map[sales.SaleID]sales.Sale),
	}
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (m *Memory) SaveCategory(_ context.Context, c sales.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
	return nil
}

func (m *Memory) GetCategory(_ context.Context, id sales.CategoryID) (*sales.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListCategories(_ context.Context, nameContains string) ([]sales.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(nameContains)
	var result []sales.Category
	for _, c := range m.categories {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteCategory(_ context.Context, id sales.CategoryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return &sales.NotFoundError{Kind: "category", ID: string(id)}
	}
	delete(m.categories, id)
	return nil
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (m *Memory) SaveCustomer(_ context.Context, c sales.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id sales.CustomerID) (*sales.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]sales.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sales.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) DeleteCustomer(_ context.Context, id sales.CustomerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return &sales.NotFoundError{Kind: "customer", ID: string(id)}
	}
	delete(m.customers, id)
	return nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) SaveProduct(_ context.Context, p sales.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) GetProduct(_ context.Context, id sales.ProductID) (*sales.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]sales.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sales.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id sales.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return &sales.NotFoundError{Kind: "product", ID: string(id)}
	}
	delete(m.products, id)
	return nil
}

// =============================================================================
// SALES
// =============================================================================

func (m *Memory) CreateSale(_ context.Context, s sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales[s.ID] = cloneSale(s)
	return nil
}

func (m *Memory) GetSale(_ context.Context, id sales.SaleID) (*sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sales[id]; ok {
		c := cloneSale(s)
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) UpdateSale(_ context.Context, s sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[s.ID]; !ok {
		return &sales.NotFoundError{Kind: "sale", ID: string(s.ID)}
	}
	m.sales[s.ID] = cloneSale(s)
	return nil
}

func (m *Memory) DeleteSale(_ context.Context, id sales.SaleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[id]; !ok {
		return &sales.NotFoundError{Kind: "sale", ID: string(id)}
	}
	delete(m.sales, id)
	return nil
}

func (m *Memory) QuerySales(_ context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []sales.Sale
	for _, s := range m.sales {
		if matchesFilter(s, f) {
			result = append(result, cloneSale(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func matchesFilter(s sales.Sale, f sales.SaleFilter) bool {
	if f.CustomerID != "" && s.CustomerID != f.CustomerID {
		return false
	}
	if f.From != nil && s.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && s.Date.After(*f.To) {
		return false
	}
	if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
		return false
	}
	if f.MinTotal != nil && s.Total.LessThan(*f.MinTotal) {
		return false
	}
	if f.MaxTotal != nil && s.Total.GreaterThan(*f.MaxTotal) {
		return false
	}
	return true
}

func cloneSale(s sales.Sale) sales.Sale {
	c := s
	c.Items = append([]sales.LineItem(nil), s.Items...)
	return c
}

// Reset wipes all data. Used by the demo loader.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[sales.CategoryID]sales.Category)
	m.customers = make(map[sales.CustomerID]sales.Customer)
	m.products = make(map[sales.ProductID]sales.Product)
	m.sales = make(map[sales.SaleID]sales.Sale)
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For the memory store this is simulated with a snapshot + rollback on error.
// The store-wide lock serializes whole operations, which is what the engine
// needs to avoid interleaved stock read-modify-writes.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(sales.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	view := &txMemoryView{parent: tm.Memory}
	if err := fn(view); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	categories map[sales.CategoryID]sales.Category
	customers  map[sales.CustomerID]sales.Customer
	products   map[sales.ProductID]sales.Product
	sales      map[sales.SaleID]sales.Sale
}

func (tm *TxMemory) snapshot() memorySnapshot {
	snap := memorySnapshot{
		categories: make(map[sales.CategoryID]sales.Category, len(tm.categories)),
		customers:  make(map[sales.CustomerID]sales.Customer, len(tm.customers)),
		products:   make(map[sales.ProductID]sales.Product, len(tm.products)),
		sales:      make(map[sales.SaleID]sales.Sale, len(tm.sales)),
	}
	for k, v := range tm.categories {
		snap.categories[k] = v
	}
	for k, v := range tm.customers {
		snap.customers[k] = v
	}
	for k, v := range tm.products {
		snap.products[k] = v
	}
	for k, v := range tm.sales {
		snap.sales[k] = cloneSale(v)
	}
	return snap
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.categories = s.categories
	tm.customers = s.customers
	tm.products = s.products
	tm.sales = s.sales
}

// txMemoryView gives the transaction function unlocked access to the parent
// maps; the surrounding WithTx already holds the write lock.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) SaveCategory(_ context.Context, c sales.Category) error {
	tv.parent.categories[c.ID] = c
	return nil
}

func (tv *txMemoryView) GetCategory(_ context.Context, id sales.CategoryID) (*sales.Category, error) {
	if c, ok := tv.parent.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListCategories(ctx context.Context, nameContains string) ([]sales.Category, error) {
	needle := strings.ToLower(nameContains)
	var result []sales.Category
	for _, c := range tv.parent.categories {
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (tv *txMemoryView) DeleteCategory(_ context.Context, id sales.CategoryID) error {
	if _, ok := tv.parent.categories[id]; !ok {
		return &sales.NotFoundError{Kind: "category", ID: string(id)}
	}
	delete(tv.parent.categories, id)
	return nil
}

func (tv *txMemoryView) SaveCustomer(_ context.Context, c sales.Customer) error {
	tv.parent.customers[c.ID] = c
	return nil
}

func (tv *txMemoryView) GetCustomer(_ context.Context, id sales.CustomerID) (*sales.Customer, error) {
	if c, ok := tv.parent.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListCustomers(_ context.Context) ([]sales.Customer, error) {
	result := make([]sales.Customer, 0, len(tv.parent.customers))
	for _, c := range tv.parent.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (tv *txMemoryView) DeleteCustomer(_ context.Context, id sales.CustomerID) error {
	if _, ok := tv.parent.customers[id]; !ok {
		return &sales.NotFoundError{Kind: "customer", ID: string(id)}
	}
	delete(tv.parent.customers, id)
	return nil
}

func (tv *txMemoryView) SaveProduct(_ context.Context, p sales.Product) error {
	tv.parent.products[p.ID] = p
	return nil
}

func (tv *txMemoryView) GetProduct(_ context.Context, id sales.ProductID) (*sales.Product, error) {
	if p, ok := tv.parent.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListProducts(_ context.Context) ([]sales.Product, error) {
	result := make([]sales.Product, 0, len(tv.parent.products))
	for _, p := range tv.parent.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (tv *txMemoryView) DeleteProduct(_ context.Context, id sales.ProductID) error {
	if _, ok := tv.parent.products[id]; !ok {
		return &sales.NotFoundError{Kind: "product", ID: string(id)}
	}
	delete(tv.parent.products, id)
	return nil
}

func (tv *txMemoryView) CreateSale(_ context.Context, s sales.Sale) error {
	tv.parent.sales[s.ID] = cloneSale(s)
	return nil
}

func (tv *txMemoryView) GetSale(_ context.Context, id sales.SaleID) (*sales.Sale, error) {
	if s, ok := tv.parent.sales[id]; ok {
		c := cloneSale(s)
		return &c, nil
	}
	return nil, nil
}

func (tv *txMemoryView) UpdateSale(_ context.Context, s sales.Sale) error {
	if _, ok := tv.parent.sales[s.ID]; !ok {
		return &sales.NotFoundError{Kind: "sale", ID: string(s.ID)}
	}
	tv.parent.sales[s.ID] = cloneSale(s)
	return nil
}

func (tv *txMemoryView) DeleteSale(_ context.Context, id sales.SaleID) error {
	if _, ok := tv.parent.sales[id]; !ok {
		return &sales.NotFoundError{Kind: "sale", ID: string(id)}
	}
	delete(tv.parent.sales, id)
	return nil
}

func (tv *txMemoryView) QuerySales(_ context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	var result []sales.Sale
	for _, s := range tv.parent.sales {
		if matchesFilter(s, f) {
			result = append(result, cloneSale(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
