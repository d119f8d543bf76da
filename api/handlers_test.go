/*
handlers_test.go - HTTP-level tests for the sales API

Tests run real requests against the chi router over an in-memory store:
- Catalog CRUD and error codes
- Sale creation/update/deletion driving stock adjustments
- Report endpoints
- Demo seed/reset
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercato/sales-engine/sales/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(store.NewTxMemory())
	srv := httptest.NewServer(NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request and decodes the response body into out (if non-nil).
func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode
}

func createTestProduct(t *testing.T, srv *httptest.Server, name string, price float64, stock int, categoryID string) ProductDTO {
	t.Helper()
	var dto ProductDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/products", ProductRequest{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	}, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

func getTestProduct(t *testing.T, srv *httptest.Server, id string) ProductDTO {
	t.Helper()
	var dto ProductDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/products/"+id, nil, &dto)
	require.Equal(t, http.StatusOK, status)
	return dto
}

func createTestSale(t *testing.T, srv *httptest.Server, req SaleRequest) SaleDTO {
	t.Helper()
	var dto SaleDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/sales", req, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

// =============================================================================
// CATALOG
// =============================================================================

func TestAPI_CategoryCRUD(t *testing.T) {
	srv := newTestServer(t)

	// Create
	var created CategoryDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/categories",
		CategoryRequest{Name: "Beverages", Description: "Drinks"}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)

	// Missing name is rejected
	status = doJSON(t, http.MethodPost, srv.URL+"/api/categories", CategoryRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Read back
	var got CategoryDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/categories/"+created.ID, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Beverages", got.Name)

	// Update
	status = doJSON(t, http.MethodPut, srv.URL+"/api/categories/"+created.ID,
		CategoryRequest{Name: "Drinks"}, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Drinks", got.Name)

	// List with name filter
	var list []CategoryDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/categories?name=rink", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)

	// Delete, then 404
	status = doJSON(t, http.MethodDelete, srv.URL+"/api/categories/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, status)
	status = doJSON(t, http.MethodGet, srv.URL+"/api/categories/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ProductResolvesCategory(t *testing.T) {
	srv := newTestServer(t)

	var category CategoryDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/categories",
		CategoryRequest{Name: "Electronics"}, &category)
	require.Equal(t, http.StatusCreated, status)

	product := createTestProduct(t, srv, "Earbuds", 45.00, 40, category.ID)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Electronics", product.Category.Name)
	assert.Equal(t, 45.00, product.UnitPrice)

	// Negative stock is rejected
	status = doJSON(t, http.MethodPost, srv.URL+"/api/products",
		ProductRequest{Name: "Broken", Price: 1, Stock: -1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// SALES
// =============================================================================

func TestAPI_CreateSale_AdjustsStock(t *testing.T) {
	// GIVEN: A product with stock 10
	// WHEN: Posting a sale of 4 units
	// THEN: The response carries the computed total and the product's stock
	//       endpoint reflects the decrement

	srv := newTestServer(t)
	product := createTestProduct(t, srv, "Coffee", 12.50, 10, "")

	sale := createTestSale(t, srv, SaleRequest{
		PaymentMethod: "Cash",
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 4}},
	})

	assert.Equal(t, 50.0, sale.Total)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 12.50, sale.Items[0].UnitPrice)
	assert.Equal(t, "Coffee", sale.Items[0].ProductName)

	assert.Equal(t, 6, getTestProduct(t, srv, product.ID).Stock)
}

func TestAPI_CreateSale_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	// Empty item list is a 400
	status := doJSON(t, http.MethodPost, srv.URL+"/api/sales", SaleRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown product is a 404
	status = doJSON(t, http.MethodPost, srv.URL+"/api/sales", SaleRequest{
		Items: []SaleItemRequest{{ProductID: "prod-ghost", Quantity: 1}},
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_UpdateSale_ReappliesStockAndSetsDate(t *testing.T) {
	// GIVEN: A sale of 4 units
	// WHEN: Updating it to 1 unit with an explicit date
	// THEN: Stock nets out to the new quantity and the date is applied

	srv := newTestServer(t)
	product := createTestProduct(t, srv, "Coffee", 12.50, 10, "")

	sale := createTestSale(t, srv, SaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 4}},
	})
	require.Equal(t, 6, getTestProduct(t, srv, product.ID).Stock)

	var updated SaleDTO
	status := doJSON(t, http.MethodPut, srv.URL+"/api/sales/"+sale.ID, SaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
		Date:  "2026-03-15",
	}, &updated)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 9, getTestProduct(t, srv, product.ID).Stock)
	assert.Equal(t, 12.5, updated.Total)

	parsed, err := time.Parse(time.RFC3339, updated.Date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), parsed.UTC())

	// A bad date format is a 400
	status = doJSON(t, http.MethodPut, srv.URL+"/api/sales/"+sale.ID, SaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
		Date:  "15/03/2026",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_DeleteSale_RestoresStock(t *testing.T) {
	srv := newTestServer(t)
	product := createTestProduct(t, srv, "Coffee", 12.50, 10, "")

	sale := createTestSale(t, srv, SaleRequest{
		Items: []SaleItemRequest{{ProductID: product.ID, Quantity: 4}},
	})

	status := doJSON(t, http.MethodDelete, srv.URL+"/api/sales/"+sale.ID, nil, nil)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 10, getTestProduct(t, srv, product.ID).Stock)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales/"+sale.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ListSales_FilterByPaymentMethod(t *testing.T) {
	srv := newTestServer(t)
	product := createTestProduct(t, srv, "Coffee", 12.50, 100, "")

	createTestSale(t, srv, SaleRequest{
		PaymentMethod: "Cash",
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 1}},
	})
	createTestSale(t, srv, SaleRequest{
		PaymentMethod: "Card",
		Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 2}},
	})

	var list []SaleDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/sales?payment_method=Card", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Card", list[0].PaymentMethod)
	assert.Equal(t, 25.0, list[0].Total)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestAPI_Reports(t *testing.T) {
	// GIVEN: Sales in two categories recorded through the engine
	// WHEN: Hitting the three report endpoints
	// THEN: Monthly revenue lands in the current month's bucket, category
	//       revenue groups by name, top products rank by quantity

	srv := newTestServer(t)

	var food CategoryDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/categories",
		CategoryRequest{Name: "Food"}, &food)
	require.Equal(t, http.StatusCreated, status)

	pasta := createTestProduct(t, srv, "Pasta", 2.00, 100, food.ID)
	earbuds := createTestProduct(t, srv, "Earbuds", 45.00, 100, "")

	createTestSale(t, srv, SaleRequest{
		Items: []SaleItemRequest{
			{ProductID: pasta.ID, Quantity: 10},
			{ProductID: earbuds.ID, Quantity: 1},
		},
	})
	createTestSale(t, srv, SaleRequest{
		Items: []SaleItemRequest{{ProductID: pasta.ID, Quantity: 5}},
	})

	now := time.Now().UTC()

	// Monthly revenue: everything lands in the current month
	var monthly MonthlyRevenueDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales/reports/monthly", nil, &monthly)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, now.Year(), monthly.Year)
	require.Len(t, monthly.Totals, 12)
	assert.Equal(t, 75.0, monthly.Totals[int(now.Month())-1])

	// Revenue by category: earbuds are uncategorized
	var byCategory CategoryRevenueDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales/reports/by-category", nil, &byCategory)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, byCategory.Categories, 2)
	assert.Equal(t, "Uncategorized", byCategory.Categories[0])
	assert.Equal(t, 45.0, byCategory.Totals[0])
	assert.Equal(t, "Food", byCategory.Categories[1])
	assert.Equal(t, 30.0, byCategory.Totals[1])

	// Top products: pasta sold 15 units across two sales
	var top []TopProductDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales/reports/top-products?limit=1", nil, &top)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, top, 1)
	assert.Equal(t, pasta.ID, top[0].ProductID)
	assert.Equal(t, 15, top[0].Quantity)
	assert.Equal(t, 30.0, top[0].Revenue)
}

// =============================================================================
// DEMO DATA
// =============================================================================

func TestAPI_DemoSeedAndReset(t *testing.T) {
	srv := newTestServer(t)

	var counts map[string]int
	status := doJSON(t, http.MethodPost, srv.URL+"/api/demo/seed", nil, &counts)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 8, counts["products"])
	assert.Equal(t, 8, counts["sales"])

	var list []SaleDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 8)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/demo/reset", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/sales", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}
