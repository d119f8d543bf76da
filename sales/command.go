/*
command.go - Typed command boundary for Sale Engine operations

PURPOSE:
  Requests reach the engine as strongly-typed, validated commands. Anything
  that fails to parse or validate is rejected with a ValidationError before
  the engine touches the store. Client-supplied prices never appear here:
  monetary computation always uses the stored product price, which prevents
  client-side price tampering.

SEE ALSO:
  - engine.go: Consumes these commands
  - api/dto.go: HTTP request types converted into commands
*/
package sales

import (
	"fmt"
	"time"
)

// LineRequest is one requested line of a sale: which product, how many.
type LineRequest struct {
	ProductID ProductID
	Quantity  int
}

// CreateSaleCommand describes a sale to be recorded.
type CreateSaleCommand struct {
	CustomerID    CustomerID
	PaymentMethod string
	Items         []LineRequest
}

// Validate checks the command before any store access.
func (c CreateSaleCommand) Validate() error {
	if len(c.Items) == 0 {
		return &ValidationError{Code: "empty_items", Message: "sale must have at least one item"}
	}
	for i, it := range c.Items {
		if it.ProductID == "" {
			return &ValidationError{
				Code:    "missing_product",
				Message: fmt.Sprintf("item %d has no product id", i),
			}
		}
		if it.Quantity <= 0 {
			return &ValidationError{
				Code:    "invalid_quantity",
				Message: fmt.Sprintf("item %d has non-positive quantity %d", i, it.Quantity),
			}
		}
	}
	return nil
}

// UpdateSaleCommand fully replaces a sale's content. The item list is never
// patched partially. Date is only overwritten when explicitly supplied.
type UpdateSaleCommand struct {
	CustomerID    CustomerID
	PaymentMethod string
	Items         []LineRequest
	Date          *time.Time
}

// Validate applies the same rules as create.
func (c UpdateSaleCommand) Validate() error {
	return CreateSaleCommand{
		CustomerID:    c.CustomerID,
		PaymentMethod: c.PaymentMethod,
		Items:         c.Items,
	}.Validate()
}
