package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/datastore"
)

// CatalogHandler serves the public, read-only catalog.
type CatalogHandler struct {
	service catalog.Service
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/products", h.handleListProducts)
	router.Get("/api/products/{id}", h.handleGetProduct)
	router.Get("/api/categories", h.handleListCategories)
	router.Get("/api/categories/{id}", h.handleGetCategory)
	router.Get("/api/services", h.handleListServices)
	router.Get("/api/services/{slug}", h.handleGetService)
	router.Get("/api/banners", h.handleListBanners)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	page, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get category")
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list services")
		return
	}
	respondWithJSON(w, http.StatusOK, services)
}

func (h *CatalogHandler) handleGetService(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	entry, err := h.service.GetServiceBySlug(r.Context(), slug)
	if err != nil {
		h.fail(w, err, "Failed to get service")
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (h *CatalogHandler) handleListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.service.ListBanners(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list banners")
		return
	}
	respondWithJSON(w, http.StatusOK, banners)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error, fallback string) {
	status := mapErrorToStatusCode(err)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondWithError(w, status, "Not found")
	case errors.Is(err, datastore.ErrNotConfigured):
		respondWithError(w, status, err.Error())
	default:
		log.Error().Err(err).Msg("handler: catalog request failed")
		respondWithError(w, status, fallback)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("handler: failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}
