package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dinartr/storefront/internal/blob"
	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/datastore"
	shopHttp "github.com/dinartr/storefront/internal/handler/http"
	"github.com/dinartr/storefront/internal/order"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret-pass"
)

type adminFixture struct {
	router  *chi.Mux
	catalog *MockCatalogService
	orders  *MockOrderService
	blobs   *MockBlobStore
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	f := &adminFixture{
		router:  chi.NewRouter(),
		catalog: new(MockCatalogService),
		orders:  new(MockOrderService),
		blobs:   new(MockBlobStore),
	}
	auth := shopHttp.AdminAuth(adminEmail, string(hash))
	shopHttp.NewAdminHandler(f.catalog, f.orders, f.blobs, auth).RegisterRoutes(f.router)
	return f
}

func (f *adminFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(adminEmail, adminPassword)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestAdminAuth(t *testing.T) {
	f := newAdminFixture(t)

	tests := []struct {
		name     string
		user     string
		password string
		noAuth   bool
	}{
		{name: "no_credentials", noAuth: true},
		{name: "wrong_password", user: adminEmail, password: "guess"},
		{name: "wrong_email", user: "root@example.com", password: adminPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/data", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
		})
	}
	f.catalog.AssertNotCalled(t, "ListProducts", mock.Anything)
}

func TestAdminAuth_NotConfigured(t *testing.T) {
	router := chi.NewRouter()
	shopHttp.NewAdminHandler(new(MockCatalogService), new(MockOrderService), new(MockBlobStore), shopHttp.AdminAuth("", "")).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/admin/data", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAdminHandler_Data(t *testing.T) {
	f := newAdminFixture(t)
	f.catalog.On("ListProducts", mock.Anything).Return([]catalog.Product{{Title: "Widget"}}, nil).Once()
	f.catalog.On("ListCategories", mock.Anything).Return([]catalog.Category{}, nil).Once()
	f.catalog.On("ListBanners", mock.Anything).Return([]catalog.Banner{}, nil).Once()
	f.catalog.On("ListServices", mock.Anything).Return([]catalog.ServiceEntry{}, nil).Once()
	f.orders.On("ListOrders", mock.Anything).Return([]order.Order{{CustomerName: "Ann", Status: order.StatusPending}}, nil).Once()

	rr := f.do(t, http.MethodGet, "/admin/data", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var resp shopHttp.AdminDataResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Products, 1)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, order.StatusPending, resp.Orders[0].Status)
	assert.Empty(t, resp.Error)
	f.catalog.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestAdminHandler_Data_NotConfigured(t *testing.T) {
	f := newAdminFixture(t)
	f.catalog.On("ListProducts", mock.Anything).Return(nil, datastore.ErrNotConfigured)
	f.catalog.On("ListCategories", mock.Anything).Return(nil, datastore.ErrNotConfigured)
	f.catalog.On("ListBanners", mock.Anything).Return(nil, datastore.ErrNotConfigured)
	f.catalog.On("ListServices", mock.Anything).Return(nil, datastore.ErrNotConfigured)
	f.orders.On("ListOrders", mock.Anything).Return(nil, datastore.ErrNotConfigured)

	rr := f.do(t, http.MethodGet, "/admin/data", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"products": [], "categories": [], "banners": [], "services": [], "orders": [],
		"error": "persistence service not configured"
	}`, rr.Body.String())
}

func TestAdminHandler_CreateProduct(t *testing.T) {
	catID := uuid.Must(uuid.NewV4())

	t.Run("success", func(t *testing.T) {
		f := newAdminFixture(t)
		f.catalog.On("CreateProduct", mock.Anything, mock.MatchedBy(func(in catalog.ProductInput) bool {
			return in.Title == "Lamp" && in.CategoryID == catID.String() && in.Price.Equal(decimal.RequireFromString("19.99"))
		})).Return(nil).Once()

		rr := f.do(t, http.MethodPost, "/admin/products", `{"title":"  Lamp ","price":19.99,"category_id":"`+catID.String()+`"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
		f.catalog.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		f := newAdminFixture(t)

		rr := f.do(t, http.MethodPost, "/admin/products", `{"title":"","category_id":"nope"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp shopHttp.ValidationErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Contains(t, resp.Details, "title")
		assert.Contains(t, resp.Details, "category_id")
		f.catalog.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("unknown_category", func(t *testing.T) {
		f := newAdminFixture(t)
		f.catalog.On("CreateProduct", mock.Anything, mock.Anything).Return(catalog.ErrUnknownCategory).Once()

		rr := f.do(t, http.MethodPost, "/admin/products", `{"title":"Lamp","category_id":"`+catID.String()+`"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.JSONEq(t, `{"error":"category does not exist"}`, rr.Body.String())
	})
}

func TestAdminHandler_CreateService_DuplicateSlug(t *testing.T) {
	f := newAdminFixture(t)
	f.catalog.On("CreateService", mock.Anything, catalog.ServiceInput{Title: "Repair", Slug: "repair"}).
		Return(catalog.ErrSlugExists).Once()

	rr := f.do(t, http.MethodPost, "/admin/services", `{"title":"Repair","slug":" repair "}`)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"service slug already exists"}`, rr.Body.String())
	f.catalog.AssertExpectations(t)
}

func TestAdminHandler_UpdateBanner(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.Must(uuid.NewV4())
	f.catalog.On("UpdateBanner", mock.Anything, id, catalog.BannerInput{ImageURL: "https://cdn/b.png", Title: "Sale"}).
		Return(nil).Once()

	rr := f.do(t, http.MethodPut, "/admin/banners/"+id.String(), `{"image_url":"https://cdn/b.png","title":"Sale"}`)

	require.Equal(t, http.StatusNoContent, rr.Code)
	f.catalog.AssertExpectations(t)
}

func TestAdminHandler_DeleteCategory(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", wantStatus: http.StatusNoContent},
		{name: "missing", err: catalog.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "remote_failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture(t)
			f.catalog.On("DeleteCategory", mock.Anything, id).Return(tt.err).Once()

			rr := f.do(t, http.MethodDelete, "/admin/categories/"+id.String(), "")

			require.Equal(t, tt.wantStatus, rr.Code)
			f.catalog.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		body       string
		serviceErr error
		callsSvc   bool
		wantStatus int
	}{
		{name: "advance", body: `{"status":"processing"}`, callsSvc: true, wantStatus: http.StatusNoContent},
		{name: "invalid_transition", body: `{"status":"pending"}`, serviceErr: order.ErrInvalidStatusTransition, callsSvc: true, wantStatus: http.StatusConflict},
		{name: "missing_order", body: `{"status":"completed"}`, serviceErr: order.ErrOrderNotFound, callsSvc: true, wantStatus: http.StatusNotFound},
		{name: "unknown_status", body: `{"status":"shipped"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture(t)
			if tt.callsSvc {
				f.orders.On("UpdateOrderStatus", mock.Anything, id, mock.AnythingOfType("order.Status")).Return(tt.serviceErr).Once()
			}

			rr := f.do(t, http.MethodPut, "/admin/orders/"+id.String()+"/status", tt.body)

			require.Equal(t, tt.wantStatus, rr.Code)
			f.orders.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_DeleteOrder(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.Must(uuid.NewV4())
	f.orders.On("DeleteOrder", mock.Anything, id).Return(order.ErrOrderNotFound).Once()

	rr := f.do(t, http.MethodDelete, "/admin/orders/"+id.String(), "")

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"order not found"}`, rr.Body.String())
}

func newUploadRequest(t *testing.T, folder, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(t, writer.WriteField("folder", folder))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(adminEmail, adminPassword)
	return req
}

func TestAdminHandler_Upload(t *testing.T) {
	f := newAdminFixture(t)
	f.blobs.On("Upload", mock.Anything, "products", "lamp.png", "application/octet-stream", "png-bytes").
		Return(blob.Object{Path: "products/1-2.png", URL: "http://localhost:8080/assets/products/1-2.png"}, nil).
		Once()

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, newUploadRequest(t, "products", "lamp.png", "png-bytes"))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp shopHttp.UploadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "products/1-2.png", resp.Path)
	assert.Equal(t, "http://localhost:8080/assets/products/1-2.png", resp.URL)
	f.blobs.AssertExpectations(t)
}

func TestAdminHandler_Upload_Errors(t *testing.T) {
	t.Run("no_file", func(t *testing.T) {
		f := newAdminFixture(t)
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, newUploadRequest(t, "products", "", ""))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"no file provided"}`, rr.Body.String())
	})

	t.Run("bad_folder", func(t *testing.T) {
		f := newAdminFixture(t)
		f.blobs.On("Upload", mock.Anything, "../etc", "x.png", mock.Anything, mock.Anything).
			Return(blob.Object{}, blob.ErrInvalidFolder).Once()

		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, newUploadRequest(t, "../etc", "x.png", "x"))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"invalid upload folder"}`, rr.Body.String())
	})

	t.Run("storage_failure", func(t *testing.T) {
		f := newAdminFixture(t)
		f.blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(blob.Object{}, errors.New("disk full")).Once()

		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, newUploadRequest(t, "", "x.png", "x"))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"ok":false,"error":"Upload failed"}`, rr.Body.String())
	})
}
