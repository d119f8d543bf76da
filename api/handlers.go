/*
handlers.go - HTTP API handlers for the sales management system

PURPOSE:
  Exposes the sales engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic. Catalog CRUD
  (categories, customers, products) is plain data-entry plumbing served
  straight from the store; everything touching stock goes through the
  Sale Engine.

ENDPOINTS:
  Categories: GET/POST /api/categories, GET/PUT/DELETE /api/categories/{id}
  Customers:  GET/POST /api/customers,  GET/PUT/DELETE /api/customers/{id}
  Products:   GET/POST /api/products,   GET/PUT/DELETE /api/products/{id}
  Sales:      GET/POST /api/sales,      GET/PUT/DELETE /api/sales/{id}
  Reports:    GET /api/sales/reports/monthly
              GET /api/sales/reports/by-category
              GET /api/sales/reports/top-products
  Demo:       POST /api/demo/seed, POST /api/demo/reset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - seed.go: Demo data loader
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercato/sales-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    sales.TxStore
	Engine   *sales.Engine
	Reporter *sales.Reporter
}

// NewHandler creates a new handler with the given store.
func NewHandler(store sales.TxStore) *Handler {
	return &Handler{
		Store:    store,
		Engine:   sales.NewEngine(store),
		Reporter: sales.NewReporter(store),
	}
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns categories, optionally filtered by ?name= substring.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}

	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = toCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCategory returns a single category.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := sales.CategoryID(chi.URLParam(r, "id"))

	category, err := h.Store.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get category", err)
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(*category))
}

// CreateCategory creates a new category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required", nil)
		return
	}

	category := sales.Category{
		ID:          sales.CategoryID(uuid.NewString()),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.Store.SaveCategory(r.Context(), category); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(category))
}

// UpdateCategory replaces an existing category.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := sales.CategoryID(chi.URLParam(r, "id"))

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get category", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Category not found", nil)
		return
	}

	category := sales.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.Store.SaveCategory(r.Context(), category); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

// DeleteCategory removes a category. Products referencing it are left with a
// dangling reference; reporting buckets them as uncategorized.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := sales.CategoryID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		h.handleError(w, err, "Failed to delete category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers, newest first.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := sales.CustomerID(chi.URLParam(r, "id"))

	customer, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get customer", err)
		return
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// CreateCustomer creates a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Customer name is required", nil)
		return
	}

	customer := sales.Customer{
		ID:        sales.CustomerID(uuid.NewString()),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveCustomer(r.Context(), customer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(customer))
}

// UpdateCustomer replaces an existing customer.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := sales.CustomerID(chi.URLParam(r, "id"))

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	existing, err := h.Store.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get customer", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}

	customer := *existing
	customer.Name = req.Name
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	if err := h.Store.SaveCustomer(r.Context(), customer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(customer))
}

// DeleteCustomer removes a customer. Sales keep their weak reference.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := sales.CustomerID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteCustomer(r.Context(), id); err != nil {
		h.handleError(w, err, "Failed to delete customer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products with resolved categories.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	categories, err := h.Store.ListCategories(ctx, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}
	byID := make(map[sales.CategoryID]sales.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		var category *sales.Category
		if c, ok := byID[p.CategoryID]; ok {
			category = &c
		}
		dtos[i] = toProductDTO(p, category)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns a single product with its category resolved.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := sales.ProductID(chi.URLParam(r, "id"))

	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	category, err := h.resolveCategory(r, product.CategoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve category", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product, category))
}

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Product name is required", nil)
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Product price must be non-negative", nil)
		return
	}
	if req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "Product stock must be non-negative", nil)
		return
	}

	product := sales.Product{
		ID:          sales.ProductID(uuid.NewString()),
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
		CategoryID:  sales.CategoryID(req.CategoryID),
	}
	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	category, err := h.resolveCategory(r, product.CategoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(product, category))
}

// UpdateProduct replaces an existing product, including an administrative
// stock edit.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := sales.ProductID(chi.URLParam(r, "id"))

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Price < 0 || req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "Price and stock must be non-negative", nil)
		return
	}

	existing, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	product := sales.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
		CategoryID:  sales.CategoryID(req.CategoryID),
	}
	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update product", err)
		return
	}

	category, err := h.resolveCategory(r, product.CategoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve category", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(product, category))
}

// DeleteProduct removes a product. Historical sales keep their snapshots.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := sales.ProductID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		h.handleError(w, err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handler) resolveCategory(r *http.Request, id sales.CategoryID) (*sales.Category, error) {
	if id == "" {
		return nil, nil
	}
	return h.Store.GetCategory(r.Context(), id)
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns sales matching the optional query filters, newest first.
// Filters: customer_id, start, end, payment_method, min_total, max_total.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSaleFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	result, err := h.Engine.Query(r.Context(), filter)
	if err != nil {
		h.handleError(w, err, "Failed to list sales")
		return
	}

	names, err := h.productNames(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve products", err)
		return
	}

	dtos := make([]SaleDTO, len(result))
	for i, s := range result {
		customer, _ := h.Store.GetCustomer(r.Context(), s.CustomerID)
		dtos[i] = toSaleDTO(s, customer, names)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSale returns a single sale with resolved references.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))

	sale, err := h.Engine.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to get sale")
		return
	}
	h.writeSale(w, r, http.StatusOK, *sale)
}

// CreateSale records a new sale through the engine, adjusting stock.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sale, err := h.Engine.Create(r.Context(), sales.CreateSaleCommand{
		CustomerID:    sales.CustomerID(req.CustomerID),
		PaymentMethod: req.PaymentMethod,
		Items:         toLineRequests(req.Items),
	})
	if err != nil {
		h.handleError(w, err, "Failed to create sale")
		return
	}
	h.writeSale(w, r, http.StatusCreated, *sale)
}

// UpdateSale replaces a sale through the engine: old stock restored, new
// items applied.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))

	var req SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cmd := sales.UpdateSaleCommand{
		CustomerID:    sales.CustomerID(req.CustomerID),
		PaymentMethod: req.PaymentMethod,
		Items:         toLineRequests(req.Items),
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD or RFC3339)", err)
			return
		}
		cmd.Date = &date
	}

	sale, err := h.Engine.Update(r.Context(), id, cmd)
	if err != nil {
		h.handleError(w, err, "Failed to update sale")
		return
	}
	h.writeSale(w, r, http.StatusOK, *sale)
}

// DeleteSale removes a sale through the engine, restoring stock.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))
	if err := h.Engine.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "Failed to delete sale")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sale deleted"})
}

func (h *Handler) writeSale(w http.ResponseWriter, r *http.Request, status int, s sales.Sale) {
	customer, _ := h.Store.GetCustomer(r.Context(), s.CustomerID)
	names, err := h.productNames(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve products", err)
		return
	}
	writeJSON(w, status, toSaleDTO(s, customer, names))
}

func (h *Handler) productNames(r *http.Request) (map[sales.ProductID]string, error) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		return nil, err
	}
	names := make(map[sales.ProductID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

func toLineRequests(items []SaleItemRequest) []sales.LineRequest {
	reqs := make([]sales.LineRequest, len(items))
	for i, it := range items {
		reqs[i] = sales.LineRequest{
			ProductID: sales.ProductID(it.ProductID),
			Quantity:  it.Quantity,
		}
	}
	return reqs
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// MonthlyRevenue returns revenue per calendar month for ?year= (default:
// current year) as parallel arrays for the dashboard chart.
func (h *Handler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	report, err := h.Reporter.MonthlyRevenue(r.Context(), year)
	if err != nil {
		h.handleError(w, err, "Failed to compute monthly revenue")
		return
	}

	dto := MonthlyRevenueDTO{Year: report.Year, Totals: make([]float64, 12)}
	for i := range report.Totals {
		dto.Months[i] = i + 1
		dto.Totals[i], _ = report.Totals[i].Float64()
	}
	writeJSON(w, http.StatusOK, dto)
}

// RevenueByCategory returns per-category revenue, optionally bounded by
// ?start= and ?end= dates.
func (h *Handler) RevenueByCategory(w http.ResponseWriter, r *http.Request) {
	var filter sales.SaleFilter
	if v := r.URL.Query().Get("start"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
		filter.From = &from
	}
	if v := r.URL.Query().Get("end"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date", err)
			return
		}
		filter.To = &to
	}

	rows, err := h.Reporter.RevenueByCategory(r.Context(), filter)
	if err != nil {
		h.handleError(w, err, "Failed to compute revenue by category")
		return
	}

	dto := CategoryRevenueDTO{
		Categories: make([]string, len(rows)),
		Totals:     make([]float64, len(rows)),
	}
	for i, row := range rows {
		dto.Categories[i] = row.Category
		dto.Totals[i], _ = row.Revenue.Float64()
	}
	writeJSON(w, http.StatusOK, dto)
}

// TopProducts returns the best-selling products by quantity, up to ?limit=.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	rows, err := h.Reporter.TopProducts(r.Context(), limit)
	if err != nil {
		h.handleError(w, err, "Failed to compute top products")
		return
	}

	dtos := make([]TopProductDTO, len(rows))
	for i, row := range rows {
		revenue, _ := row.Revenue.Float64()
		dtos[i] = TopProductDTO{
			ProductID: string(row.ProductID),
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   revenue,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseSaleFilter(r *http.Request) (sales.SaleFilter, error) {
	q := r.URL.Query()
	filter := sales.SaleFilter{
		CustomerID:    sales.CustomerID(q.Get("customer_id")),
		PaymentMethod: q.Get("payment_method"),
	}

	if v := q.Get("start"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := q.Get("end"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if v := q.Get("min_total"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MinTotal = &min
	}
	if v := q.Get("max_total"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			return filter, err
		}
		filter.MaxTotal = &max
	}
	return filter, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// handleError maps engine errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, err error, message string) {
	switch {
	case sales.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case sales.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
