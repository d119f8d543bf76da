/*
engine.go - Sale Engine: the create/update/delete/reversal protocol

PURPOSE:
  Maintains consistency between Sale records and Product stock levels.
  Every operation runs inside a single store transaction, so a failure
  partway through a multi-item batch rolls back all stock writes already
  applied in that batch. The serialized transaction also removes the
  lost-update race between concurrent operations touching the same product.

STOCK PROTOCOL:
  Create:  decrement stock per line, clamped at zero (oversell is recorded,
           not rejected).
  Update:  phase 1 restores stock for every existing line (uncapped, missing
           products skipped), phase 2 reapplies the new item list exactly as
           create. Stock only ever reflects the current version of the sale.
  Delete:  restore stock as in update's phase 1, then remove the sale.

PRICE SNAPSHOTS:
  The unit price for each line is read from the stored product at operation
  time and copied into the line item. Client-supplied prices are never used
  for monetary computation.

SEE ALSO:
  - command.go: Validated inputs
  - store.go: TxStore contract the engine relies on
  - reporting.go: Read-only companion
*/
package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine owns all mutations of Sale records and the stock adjustments they
// imply. Construct one per store; it is safe for concurrent use if the
// store's WithTx serializes conflicting operations.
type Engine struct {
	store TxStore
}

// NewEngine creates a Sale Engine over the given transactional store.
func NewEngine(store TxStore) *Engine {
	return &Engine{store: store}
}

// =============================================================================
// COMMANDS
// =============================================================================

// Create records a new sale and decrements stock for each line.
// Returns the persisted sale with computed subtotals and total.
func (e *Engine) Create(ctx context.Context, cmd CreateSaleCommand) (*Sale, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sale := &Sale{
		ID:            SaleID(uuid.NewString()),
		CustomerID:    cmd.CustomerID,
		Date:          now,
		PaymentMethod: cmd.PaymentMethod,
		CreatedAt:     now,
	}

	err := e.store.WithTx(ctx, func(s Store) error {
		items, total, err := applyItems(ctx, s, cmd.Items)
		if err != nil {
			return err
		}
		sale.Items = items
		sale.Total = total

		if err := s.CreateSale(ctx, *sale); err != nil {
			return &PersistenceError{Op: "create sale", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Update replaces a sale's content wholesale: restore stock for the old
// items, reapply the new list, overwrite customer, items, payment method and
// total. The date changes only when the command supplies one.
func (e *Engine) Update(ctx context.Context, id SaleID, cmd UpdateSaleCommand) (*Sale, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var updated Sale
	err := e.store.WithTx(ctx, func(s Store) error {
		current, err := s.GetSale(ctx, id)
		if err != nil {
			return &PersistenceError{Op: "load sale", Err: err}
		}
		if current == nil {
			return &NotFoundError{Kind: "sale", ID: string(id)}
		}

		// Phase 1: reversal of the existing lines.
		if err := restoreItems(ctx, s, current.Items); err != nil {
			return err
		}

		// Phase 2: reapply the new list as create would.
		items, total, err := applyItems(ctx, s, cmd.Items)
		if err != nil {
			return err
		}

		updated = *current
		updated.CustomerID = cmd.CustomerID
		updated.Items = items
		updated.PaymentMethod = cmd.PaymentMethod
		updated.Total = total
		if cmd.Date != nil {
			updated.Date = *cmd.Date
		}

		if err := s.UpdateSale(ctx, updated); err != nil {
			return &PersistenceError{Op: "update sale", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a sale after restoring stock for every line item.
func (e *Engine) Delete(ctx context.Context, id SaleID) error {
	return e.store.WithTx(ctx, func(s Store) error {
		current, err := s.GetSale(ctx, id)
		if err != nil {
			return &PersistenceError{Op: "load sale", Err: err}
		}
		if current == nil {
			return &NotFoundError{Kind: "sale", ID: string(id)}
		}

		if err := restoreItems(ctx, s, current.Items); err != nil {
			return err
		}

		if err := s.DeleteSale(ctx, id); err != nil {
			return &PersistenceError{Op: "delete sale", Err: err}
		}
		return nil
	})
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a sale by id, or a NotFoundError.
func (e *Engine) Get(ctx context.Context, id SaleID) (*Sale, error) {
	sale, err := e.store.GetSale(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load sale", Err: err}
	}
	if sale == nil {
		return nil, &NotFoundError{Kind: "sale", ID: string(id)}
	}
	return sale, nil
}

// Query returns sales matching the filter, newest first.
func (e *Engine) Query(ctx context.Context, f SaleFilter) ([]Sale, error) {
	sales, err := e.store.QuerySales(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "query sales", Err: err}
	}
	return sales, nil
}

// =============================================================================
// STOCK PROTOCOL
// =============================================================================

// applyItems prices and applies each requested line: snapshot the product
// price, compute the subtotal, decrement stock with a zero floor. A missing
// product aborts the whole batch; the surrounding transaction discards the
// stock writes already made.
func applyItems(ctx context.Context, s Store, reqs []LineRequest) ([]LineItem, decimal.Decimal, error) {
	items := make([]LineItem, 0, len(reqs))
	total := decimal.Zero

	for _, req := range reqs {
		product, err := s.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, decimal.Zero, &PersistenceError{Op: "load product", Err: err}
		}
		if product == nil {
			return nil, decimal.Zero, &NotFoundError{Kind: "product", ID: string(req.ProductID)}
		}

		subtotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		total = total.Add(subtotal)

		next := *product
		next.Stock = product.Stock - req.Quantity
		if next.Stock < 0 {
			next.Stock = 0 // oversell tolerated, stock floors at zero
		}
		if err := s.SaveProduct(ctx, next); err != nil {
			return nil, decimal.Zero, &PersistenceError{Op: "save product stock", Err: err}
		}

		items = append(items, LineItem{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	return items, total, nil
}

// restoreItems reverses the stock decrements of previously recorded lines.
// The increase is uncapped. Products deleted since the sale are skipped:
// the reference is weak and there is nothing left to restore.
func restoreItems(ctx context.Context, s Store, items []LineItem) error {
	for _, it := range items {
		product, err := s.GetProduct(ctx, it.ProductID)
		if err != nil {
			return &PersistenceError{Op: "load product", Err: err}
		}
		if product == nil {
			continue
		}

		next := *product
		next.Stock = product.Stock + it.Quantity
		if err := s.SaveProduct(ctx, next); err != nil {
			return &PersistenceError{Op: "restore product stock", Err: err}
		}
	}
	return nil
}
