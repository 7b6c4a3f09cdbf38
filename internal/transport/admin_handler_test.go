package transport

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_RequireLogin(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{"GET", "/api/admin/products"},
		{"POST", "/api/admin/products"},
		{"PUT", "/api/admin/products/" + uuid.NewString()},
		{"DELETE", "/api/admin/products/" + uuid.NewString()},
		{"POST", "/api/admin/images"},
		{"POST", "/api/admin/import"},
		{"GET", "/api/admin/import"},
		{"DELETE", "/api/admin/import"},
		{"POST", "/api/admin/import/submit"},
		{"POST", "/api/admin/import/temp-0/image"},
	}

	for _, route := range routes {
		w := s.doJSON(t, route.method, route.path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", route.method, route.path)
	}
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(t, "POST", "/api/admin/login", LoginRequest{Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgInvalidPassword, decode[middleware.ErrorResponse](t, w).Error.Message)

	w = s.doJSON(t, "POST", "/api/admin/login", LoginRequest{Password: ""})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.doJSON(t, "GET", "/api/admin/session", nil)
	assert.False(t, decode[AdminStatusResponse](t, w).IsAdmin)

	s.login(t)
	w = s.doJSON(t, "GET", "/api/admin/session", nil)
	assert.True(t, decode[AdminStatusResponse](t, w).IsAdmin)

	w = s.doJSON(t, "GET", "/api/admin/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.doJSON(t, "POST", "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.doJSON(t, "GET", "/api/admin/products", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminLogin_DoesNotCarryToOtherSessions(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	s.cookie = nil
	w := s.doJSON(t, "GET", "/api/admin/products", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductCRUD(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.doJSON(t, "POST", "/api/admin/products", map[string]interface{}{"name": "Tea", "price": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[MutationResponse](t, w)
	assert.Equal(t, MsgProductAdded, created.Message)
	require.Len(t, created.Products, 1)
	id := created.Product.ID

	w = s.doJSON(t, "PUT", "/api/admin/products/"+id.String(), map[string]interface{}{"price": 6.5})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[MutationResponse](t, w)
	assert.Equal(t, MsgProductUpdated, updated.Message)
	assert.Equal(t, "Tea", updated.Product.Name)
	assert.Equal(t, 6.5, updated.Products[0].Price)

	w = s.doJSON(t, "DELETE", "/api/admin/products/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode[MutationResponse](t, w)
	assert.Equal(t, MsgProductDeleted, deleted.Message)
	assert.Empty(t, deleted.Products)

	w = s.doJSON(t, "DELETE", "/api/admin/products/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProduct_Validation(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	cases := []map[string]interface{}{
		{"price": 5},
		{"name": "Tea"},
		{"name": "Tea", "price": -1},
		{"name": "\t\n", "price": 1},
		{"name": "Tea", "price": 1, "image_url": "not a url"},
	}
	for _, body := range cases {
		w := s.doJSON(t, "POST", "/api/admin/products", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}

	w := s.doJSON(t, "POST", "/api/admin/products", map[string]interface{}{"name": "Free sample", "price": 0})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateProduct_RepositoryFailure(t *testing.T) {
	s := newTestServer(t)
	s.login(t)
	s.repo.failOn = 1

	w := s.doJSON(t, "POST", "/api/admin/products", map[string]interface{}{"name": "Tea", "price": 5})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgSaveFailed, decode[middleware.ErrorResponse](t, w).Error.Message)
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.doUpload(t, "/api/admin/images", "tea.png", []byte("png"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ImageResponse](t, w)
	assert.Equal(t, MsgImageUploaded, resp.Message)
	assert.Equal(t, "https://img.example.com/tea.png", resp.URL)

	s.images.fail = true
	w = s.doUpload(t, "/api/admin/images", "tea.png", []byte("png"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgUploadFailed, decode[middleware.ErrorResponse](t, w).Error.Message)

	w = s.doJSON(t, "POST", "/api/admin/images", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportFlow(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	csv := "Name , PRICE\nApple,1.5\n,2\nBanana,abc\nCherry,3\n"
	w := s.doUpload(t, "/api/admin/import", "products.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code)

	imported := decode[ImportResponse](t, w)
	assert.Equal(t, "Loaded 2 products from CSV", imported.Message)
	require.Len(t, imported.Rows, 2)
	assert.Equal(t, "temp-0", imported.Rows[0].TempID)
	assert.Equal(t, "temp-3", imported.Rows[1].TempID)

	w = s.doUpload(t, "/api/admin/import/temp-3/image", "cherry.png", []byte("png"))
	require.Equal(t, http.StatusOK, w.Code)
	attached := decode[StagedRowsResponse](t, w)
	assert.Equal(t, MsgRowImageUploaded, attached.Message)
	assert.Equal(t, "https://img.example.com/cherry.png", attached.Rows[1].ImageURL)

	w = s.doUpload(t, "/api/admin/import/temp-1/image", "x.png", []byte("png"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, "POST", "/api/admin/import/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	submitted := decode[SubmitResponse](t, w)
	assert.Equal(t, "Successfully added 2 products!", submitted.Message)
	assert.Equal(t, 2, submitted.Added)
	require.Len(t, submitted.Products, 2)
	assert.Equal(t, "Cherry", submitted.Products[0].Name)
	assert.Equal(t, "https://img.example.com/cherry.png", submitted.Products[0].ImageURL)

	w = s.doJSON(t, "GET", "/api/admin/import", nil)
	assert.Empty(t, decode[StagedRowsResponse](t, w).Rows)
}

func TestImport_DroppedRowDiagnostics(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	csv := []byte("name,price\nApple,1\n,2\nPear,-3\n")

	w := s.doUpload(t, "/api/admin/import", "products.csv", csv)
	require.Equal(t, http.StatusOK, w.Code)
	plain := decode[ImportResponse](t, w)
	assert.Equal(t, 2, plain.DroppedCount)
	assert.Nil(t, plain.Dropped)

	w = s.doUpload(t, "/api/admin/import?diagnostics=true", "products.csv", csv)
	require.Equal(t, http.StatusOK, w.Code)
	detailed := decode[ImportResponse](t, w)
	assert.Equal(t, 2, detailed.DroppedCount)
	assert.Equal(t, []importer.RowIssue{
		{Index: 1, Reason: importer.ReasonEmptyName},
		{Index: 2, Reason: importer.ReasonInvalidPrice},
	}, detailed.Dropped)
}

func TestImport_StrayQuoteInName(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.doUpload(t, "/api/admin/import", "tv.csv", []byte("name,price\nTV 32\" screen,100\n"))
	require.Equal(t, http.StatusOK, w.Code)

	imported := decode[ImportResponse](t, w)
	require.Len(t, imported.Rows, 1)
	assert.Equal(t, `TV 32" screen`, imported.Rows[0].Name)
}

func TestImport_MissingFile(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.doJSON(t, "POST", "/api/admin/import", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgCSVReadFailed, decode[middleware.ErrorResponse](t, w).Error.Message)
}

func TestImport_PartialFailure(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	var b strings.Builder
	b.WriteString("name,price\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "Item %d,%d\n", i, i+1)
	}
	w := s.doUpload(t, "/api/admin/import", "products.csv", []byte(b.String()))
	require.Equal(t, http.StatusOK, w.Code)

	s.repo.failOn = 3
	w = s.doJSON(t, "POST", "/api/admin/import/submit", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[middleware.ErrorResponse](t, w)
	assert.Equal(t, MsgAddProductsFailed, resp.Error.Message)
	assert.Equal(t, float64(2), resp.Error.Details["added"])

	w = s.doJSON(t, "GET", "/api/admin/products", nil)
	products := decode[ProductsResponse](t, w).Products
	require.Len(t, products, 2)
	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"Item 0", "Item 1"}, names)

	w = s.doJSON(t, "GET", "/api/admin/import", nil)
	assert.Empty(t, decode[StagedRowsResponse](t, w).Rows)
}

func TestImport_CancelAndEmptySubmit(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	w := s.doUpload(t, "/api/admin/import", "products.csv", []byte("name,price\nTea,1\n"))
	require.Equal(t, http.StatusOK, w.Code)

	w = s.doJSON(t, "DELETE", "/api/admin/import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.StagedImportRow{}, decode[StagedRowsResponse](t, w).Rows)

	w = s.doJSON(t, "POST", "/api/admin/import/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
