package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dadopl/poc-nocart/internal/cart-service/domain"
	"github.com/dadopl/poc-nocart/internal/cart-service/repository"
	"github.com/dadopl/poc-nocart/internal/cart-service/service"
	"github.com/dadopl/poc-nocart/internal/pkg/money"
	"github.com/go-chi/chi/v5"
)

const (
	userIDHeader        = "X-User-Id"
	correlationIDHeader = "X-Correlation-Id"
)

type CartHandler struct {
	service *service.CartService
	timeout time.Duration
}

func NewCartHandler(svc *service.CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{service: svc, timeout: timeout}
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{itemID}", h.ChangeQuantity)
	r.Delete("/cart/items/{itemID}", h.RemoveItem)
	r.Delete("/cart", h.ClearCart)
}

type AddItemRequestDTO struct {
	OfferID      int64   `json:"offer_id"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ParentItemID string  `json:"parent_item_id"`
}

type ChangeQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ID           string      `json:"id"`
	OfferID      int64       `json:"offer_id"`
	Type         string      `json:"type"`
	Name         string      `json:"name"`
	UnitPrice    money.Money `json:"unit_price"`
	Quantity     int         `json:"quantity"`
	ParentItemID string      `json:"parent_item_id,omitempty"`
	TotalPrice   money.Money `json:"total_price"`
}

type CartResponseDTO struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Items         []CartItemDTO `json:"items"`
	Total         money.Money   `json:"total"`
	ItemsCount    int           `json:"items_count"`
	TotalQuantity int           `json:"total_quantity"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	cart, err := h.service.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OfferID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_offer_id", "offer_id must be positive")
		return
	}
	if req.Type == "" {
		req.Type = string(domain.ItemTypeProduct)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	itemID, err := h.service.AddItem(ctx, userID, service.AddItemCommand{
		OfferID:       req.OfferID,
		Type:          req.Type,
		Name:          req.Name,
		Price:         req.Price,
		Quantity:      req.Quantity,
		ParentItemID:  req.ParentItemID,
		CorrelationID: r.Header.Get(correlationIDHeader),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Item added to cart",
		"item_id": itemID,
	})
}

func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	itemID := chi.URLParam(r, "itemID")

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.service.ChangeQuantity(ctx, userID, itemID, req.Quantity, r.Header.Get(correlationIDHeader))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Quantity updated"})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	itemID := chi.URLParam(r, "itemID")

	err := h.service.RemoveItem(ctx, userID, itemID, r.Header.Get(correlationIDHeader))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	err := h.service.ClearCart(ctx, userID, r.Header.Get(correlationIDHeader))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func toCartDTO(cart *domain.Cart) CartResponseDTO {
	items := cart.ItemsList()
	dtos := make([]CartItemDTO, len(items))
	for i, item := range items {
		dtos[i] = CartItemDTO{
			ID:           item.ID,
			OfferID:      item.OfferID,
			Type:         string(item.Type),
			Name:         item.Name,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity.Value(),
			ParentItemID: item.ParentItemID,
			TotalPrice:   item.TotalPrice(),
		}
	}

	total, err := cart.Total()
	if err != nil {
		// Mixed-currency carts cannot happen through the command surface;
		// report a zero total rather than failing the read.
		total = money.Zero(money.DefaultCurrency)
	}

	return CartResponseDTO{
		ID:            cart.ID,
		UserID:        cart.UserID,
		Items:         dtos,
		Total:         total,
		ItemsCount:    cart.ItemsCount(),
		TotalQuantity: cart.TotalQuantity(),
		CreatedAt:     cart.CreatedAt,
		UpdatedAt:     cart.UpdatedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", err.Error())
	case errors.Is(err, domain.ErrCartItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, money.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, money.ErrCurrencyMismatch):
		respondError(w, http.StatusUnprocessableEntity, "currency_mismatch", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
