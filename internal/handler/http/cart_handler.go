package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dinartr/storefront/internal/cart"
)

type AddCartItemRequest struct {
	ID       string          `json:"id" validate:"required"`
	Title    string          `json:"title" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
}

func (r *AddCartItemRequest) normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
}

type UpdateCartItemRequest struct {
	Qty int `json:"qty"`
}

type CartResponse struct {
	Items      []cart.Item     `json:"items"`
	TotalQty   int             `json:"total_qty"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func newCartResponse(store *cart.Store) CartResponse {
	return CartResponse{
		Items:      store.Items(),
		TotalQty:   store.TotalQty(),
		TotalPrice: store.TotalPrice(),
	}
}

// CartHandler exposes the session cart. Each request opens the cart stored
// under its session key, so two tabs of one session overwrite each other.
type CartHandler struct {
	storage  cart.Storage
	validate *validator.Validate
}

func NewCartHandler(storage cart.Storage) *CartHandler {
	return &CartHandler{
		storage:  storage,
		validate: newValidator(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/cart", func(r chi.Router) {
		r.Use(CartSession)
		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)
		r.Post("/items", h.handleAddItem)
		r.Put("/items/{id}", h.handleUpdateQty)
		r.Delete("/items/{id}", h.handleRemoveItem)
	})
}

func openSessionCart(r *http.Request, storage cart.Storage) *cart.Store {
	return cart.Open(r.Context(), storage, cart.SessionKey(cartSessionFromContext(r.Context())))
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	store := openSessionCart(r, h.storage)
	respondWithJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload AddCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	if requestPayload.Price.IsNegative() {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"price": "must not be negative"},
		})
		return
	}

	store := openSessionCart(r, h.storage)
	store.AddItem(r.Context(), cart.Item{
		ID:       requestPayload.ID,
		Title:    requestPayload.Title,
		Price:    requestPayload.Price,
		ImageURL: strings.TrimSpace(requestPayload.ImageURL),
	})
	respondWithJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) handleUpdateQty(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	store := openSessionCart(r, h.storage)
	store.UpdateQty(r.Context(), chi.URLParam(r, "id"), max(1, requestPayload.Qty))
	respondWithJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	store := openSessionCart(r, h.storage)
	store.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	respondWithJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	store := openSessionCart(r, h.storage)
	store.Clear(r.Context())
	respondWithJSON(w, http.StatusOK, newCartResponse(store))
}
