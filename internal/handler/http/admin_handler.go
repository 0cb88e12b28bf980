package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dinartr/storefront/internal/blob"
	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/datastore"
	"github.com/dinartr/storefront/internal/order"
)

const maxUploadSize = 10 << 20

type ProductRequest struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	CategoryID  string          `json:"category_id" validate:"omitempty,uuid"`
}

func (r *ProductRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (r *CategoryRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type BannerRequest struct {
	ImageURL string `json:"image_url" validate:"required"`
	Title    string `json:"title"`
}

func (r *BannerRequest) normalize() {
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

type ServiceRequest struct {
	Title       string `json:"title" validate:"required"`
	Brief       string `json:"brief"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (r *ServiceRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed"`
}

// AdminDataResponse is everything the admin dashboard lists. Lists that fail
// to load come back empty.
type AdminDataResponse struct {
	Products   []catalog.Product      `json:"products"`
	Categories []catalog.Category     `json:"categories"`
	Banners    []catalog.Banner       `json:"banners"`
	Services   []catalog.ServiceEntry `json:"services"`
	Orders     []order.Order          `json:"orders"`
	Error      string                 `json:"error,omitempty"`
}

type UploadResponse struct {
	OK    bool   `json:"ok"`
	Path  string `json:"path,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

type AdminHandler struct {
	catalog  catalog.Service
	orders   order.Service
	blobs    blob.Store
	auth     func(http.Handler) http.Handler
	validate *validator.Validate
}

func NewAdminHandler(catalogService catalog.Service, orderService order.Service, blobs blob.Store, auth func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{
		catalog:  catalogService,
		orders:   orderService,
		blobs:    blobs,
		auth:     auth,
		validate: newValidator(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/data", h.handleData)

		r.Post("/products", h.handleCreateProduct)
		r.Put("/products/{id}", h.handleUpdateProduct)
		r.Delete("/products/{id}", h.handleDelete(h.catalog.DeleteProduct))

		r.Post("/categories", h.handleCreateCategory)
		r.Put("/categories/{id}", h.handleUpdateCategory)
		r.Delete("/categories/{id}", h.handleDelete(h.catalog.DeleteCategory))

		r.Post("/banners", h.handleCreateBanner)
		r.Put("/banners/{id}", h.handleUpdateBanner)
		r.Delete("/banners/{id}", h.handleDelete(h.catalog.DeleteBanner))

		r.Post("/services", h.handleCreateService)
		r.Put("/services/{id}", h.handleUpdateService)
		r.Delete("/services/{id}", h.handleDelete(h.catalog.DeleteService))

		r.Put("/orders/{id}/status", h.handleUpdateOrderStatus)
		r.Delete("/orders/{id}", h.handleDelete(h.orders.DeleteOrder))

		r.Post("/upload", h.handleUpload)
	})
}

func (h *AdminHandler) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := AdminDataResponse{}
	var errs []error

	var err error
	if resp.Products, err = h.catalog.ListProducts(ctx); err != nil {
		errs = append(errs, err)
	}
	if resp.Categories, err = h.catalog.ListCategories(ctx); err != nil {
		errs = append(errs, err)
	}
	if resp.Banners, err = h.catalog.ListBanners(ctx); err != nil {
		errs = append(errs, err)
	}
	if resp.Services, err = h.catalog.ListServices(ctx); err != nil {
		errs = append(errs, err)
	}
	if resp.Orders, err = h.orders.ListOrders(ctx); err != nil {
		errs = append(errs, err)
	}

	resp.Products = nonNil(resp.Products)
	resp.Categories = nonNil(resp.Categories)
	resp.Banners = nonNil(resp.Banners)
	resp.Services = nonNil(resp.Services)
	resp.Orders = nonNil(resp.Orders)

	if err := errors.Join(errs...); err != nil {
		if errors.Is(err, datastore.ErrNotConfigured) {
			resp.Error = datastore.ErrNotConfigured.Error()
		} else {
			log.Error().Err(err).Msg("handler: failed to load admin data")
			resp.Error = "Failed to load"
		}
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return make([]T, 0)
	}
	return s
}

func (h *AdminHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !h.decodeProduct(w, r, &requestPayload) {
		return
	}
	h.finishCreate(w, h.catalog.CreateProduct(r.Context(), productInput(requestPayload)))
}

func (h *AdminHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var requestPayload ProductRequest
	if !h.decodeProduct(w, r, &requestPayload) {
		return
	}
	h.finishWrite(w, h.catalog.UpdateProduct(r.Context(), id, productInput(requestPayload)))
}

func (h *AdminHandler) decodeProduct(w http.ResponseWriter, r *http.Request, dst *ProductRequest) bool {
	if !decodeAndValidate(w, r, h.validate, dst) {
		return false
	}
	if dst.Price.IsNegative() {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"price": "must not be negative"},
		})
		return false
	}
	return true
}

func productInput(p ProductRequest) catalog.ProductInput {
	return catalog.ProductInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
	}
}

func (h *AdminHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var requestPayload CategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishCreate(w, h.catalog.CreateCategory(r.Context(), catalog.CategoryInput(requestPayload)))
}

func (h *AdminHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var requestPayload CategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishWrite(w, h.catalog.UpdateCategory(r.Context(), id, catalog.CategoryInput(requestPayload)))
}

func (h *AdminHandler) handleCreateBanner(w http.ResponseWriter, r *http.Request) {
	var requestPayload BannerRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishCreate(w, h.catalog.CreateBanner(r.Context(), catalog.BannerInput(requestPayload)))
}

func (h *AdminHandler) handleUpdateBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var requestPayload BannerRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishWrite(w, h.catalog.UpdateBanner(r.Context(), id, catalog.BannerInput(requestPayload)))
}

func (h *AdminHandler) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var requestPayload ServiceRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishCreate(w, h.catalog.CreateService(r.Context(), catalog.ServiceInput(requestPayload)))
}

func (h *AdminHandler) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var requestPayload ServiceRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishWrite(w, h.catalog.UpdateService(r.Context(), id, catalog.ServiceInput(requestPayload)))
}

func (h *AdminHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var requestPayload OrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	h.finishWrite(w, h.orders.UpdateOrderStatus(r.Context(), id, order.Status(requestPayload.Status)))
}

func (h *AdminHandler) handleDelete(remove func(ctx context.Context, id uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}
		h.finishWrite(w, remove(r.Context(), id))
	}
}

func (h *AdminHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("handler: failed to parse upload form")
		respondWithUploadError(w, http.StatusBadRequest, "Invalid upload form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithUploadError(w, http.StatusBadRequest, blob.ErrEmptyFile.Error())
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := h.blobs.Upload(r.Context(), r.FormValue("folder"), header.Filename, contentType, file)
	if err != nil {
		status := mapErrorToStatusCode(err)
		message := "Upload failed"
		if status == http.StatusBadRequest {
			message = err.Error()
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("handler: upload failed")
		respondWithUploadError(w, status, message)
		return
	}

	respondWithJSON(w, http.StatusCreated, UploadResponse{OK: true, Path: obj.Path, URL: obj.URL})
}

func respondWithUploadError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, UploadResponse{OK: false, Error: message})
}

func (h *AdminHandler) finishCreate(w http.ResponseWriter, err error) {
	if err != nil {
		respondWithAdminError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (h *AdminHandler) finishWrite(w http.ResponseWriter, err error) {
	if err != nil {
		respondWithAdminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondWithAdminError(w http.ResponseWriter, err error) {
	status := mapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("handler: admin write failed")
		respondWithError(w, status, "Internal server error")
		return
	}
	respondWithError(w, status, rootMessage(err))
}

// rootMessage strips "layer: ..." prefixes so sentinel text reaches the
// client unchanged.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		datastore.ErrNotConfigured,
		catalog.ErrNotFound,
		catalog.ErrSlugExists,
		catalog.ErrUnknownCategory,
		order.ErrOrderNotFound,
		order.ErrUnknownStatus,
		order.ErrInvalidStatusTransition,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
