package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/cart"
	"github.com/dinartr/storefront/internal/datastore"
	"github.com/dinartr/storefront/internal/order"
)

type CheckoutRequest struct {
	Name            string `json:"customer_name" validate:"required"`
	Email           string `json:"customer_email" validate:"omitempty,email"`
	Phone           string `json:"customer_phone" validate:"required"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
	Notes           string `json:"notes"`
}

func (r *CheckoutRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ShippingAddress = strings.TrimSpace(r.ShippingAddress)
}

// OrderHandler turns the session cart into an order.
type OrderHandler struct {
	service  order.Service
	storage  cart.Storage
	validate *validator.Validate
}

func NewOrderHandler(service order.Service, storage cart.Storage) *OrderHandler {
	return &OrderHandler{
		service:  service,
		storage:  storage,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.With(CartSession).Post("/api/orders", h.handleCheckout)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var requestPayload CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	store := openSessionCart(r, h.storage)
	lines := store.Items()
	if len(lines) == 0 {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"items": "cart is empty"},
		})
		return
	}

	sub := order.NewSubmission(order.Customer{
		Name:            requestPayload.Name,
		Email:           requestPayload.Email,
		Phone:           requestPayload.Phone,
		ShippingAddress: requestPayload.ShippingAddress,
		Notes:           requestPayload.Notes,
	}, lines, store.TotalPrice())

	result := h.service.PlaceOrder(r.Context(), sub)
	if !result.OK {
		status := http.StatusBadGateway
		if result.Error == datastore.ErrNotConfigured.Error() {
			status = http.StatusServiceUnavailable
		}
		log.Warn().Str("session", store.Key()).Str("error", result.Error).Msg("handler: checkout failed, cart kept")
		respondWithJSON(w, status, result)
		return
	}

	store.Clear(r.Context())
	respondWithJSON(w, http.StatusCreated, result)
}
