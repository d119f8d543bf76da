/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Monetary values
  cross the boundary as float64 for chart-friendly JSON; all internal math
  stays in decimal.Decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - sales/command.go: Commands the requests convert into
*/
package api

import (
	"time"

	"github.com/mercato/sales-engine/sales"
)

// =============================================================================
// CATALOG TYPES
// =============================================================================

// CategoryDTO represents a category in API responses.
type CategoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CustomerRequest creates or replaces a customer.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProductDTO represents a product, with its category resolved for display.
type ProductDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	UnitPrice   float64      `json:"unit_price"`
	Stock       int          `json:"stock"`
	CategoryID  string       `json:"category_id,omitempty"`
	Category    *CategoryDTO `json:"category,omitempty"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  string  `json:"category_id"`
}

// =============================================================================
// SALE TYPES
// =============================================================================

// SaleItemDTO is one line of a sale in API responses.
type SaleItemDTO struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// SaleDTO represents a sale with resolved references.
type SaleDTO struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id,omitempty"`
	Customer      *CustomerDTO  `json:"customer,omitempty"`
	Items         []SaleItemDTO `json:"items"`
	Date          string        `json:"date"`
	Total         float64       `json:"total"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	CreatedAt     string        `json:"created_at,omitempty"`
}

// SaleItemRequest is one requested line. The price field is informational
// only; the engine always prices from the stored product.
type SaleItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price,omitempty"`
}

// SaleRequest creates or replaces a sale. Date applies only on update and
// only when supplied (YYYY-MM-DD or RFC3339).
type SaleRequest struct {
	CustomerID    string            `json:"customer_id"`
	PaymentMethod string            `json:"payment_method"`
	Items         []SaleItemRequest `json:"items"`
	Date          string            `json:"date,omitempty"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// MonthlyRevenueDTO carries a year of revenue as parallel arrays for charts.
type MonthlyRevenueDTO struct {
	Year   int       `json:"year"`
	Months [12]int   `json:"months"`
	Totals []float64 `json:"totals"`
}

// CategoryRevenueDTO carries per-category revenue as parallel arrays.
type CategoryRevenueDTO struct {
	Categories []string  `json:"categories"`
	Totals     []float64 `json:"totals"`
}

// TopProductDTO is one row of the top-products report.
type TopProductDTO struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCategoryDTO(c sales.Category) CategoryDTO {
	return CategoryDTO{
		ID:          string(c.ID),
		Name:        c.Name,
		Description: c.Description,
	}
}

func toCustomerDTO(c sales.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toProductDTO(p sales.Product, category *sales.Category) ProductDTO {
	price, _ := p.UnitPrice.Float64()
	dto := ProductDTO{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   price,
		Stock:       p.Stock,
		CategoryID:  string(p.CategoryID),
	}
	if category != nil {
		c := toCategoryDTO(*category)
		dto.Category = &c
	}
	return dto
}

func toSaleDTO(s sales.Sale, customer *sales.Customer, productNames map[sales.ProductID]string) SaleDTO {
	total, _ := s.Total.Float64()
	dto := SaleDTO{
		ID:            string(s.ID),
		CustomerID:    string(s.CustomerID),
		Items:         make([]SaleItemDTO, len(s.Items)),
		Date:          s.Date.Format(time.RFC3339),
		Total:         total,
		PaymentMethod: s.PaymentMethod,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	if customer != nil {
		c := toCustomerDTO(*customer)
		dto.Customer = &c
	}
	for i, it := range s.Items {
		price, _ := it.UnitPrice.Float64()
		subtotal, _ := it.Subtotal.Float64()
		dto.Items[i] = SaleItemDTO{
			ProductID:   string(it.ProductID),
			ProductName: productNames[it.ProductID],
			Quantity:    it.Quantity,
			UnitPrice:   price,
			Subtotal:    subtotal,
		}
	}
	return dto
}
