package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dadopl/poc-nocart/internal/checkout-service/repository"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	repo    repository.CheckoutOrderRepository
	timeout time.Duration
}

func NewCheckoutHandler(repo repository.CheckoutOrderRepository, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{repo: repo, timeout: timeout}
}

func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Get("/checkout/{sessionID}", h.GetOrder)
	r.Get("/checkout/{sessionID}/totals", h.GetTotals)
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := chi.URLParam(r, "sessionID")

	order, err := h.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		handleRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *CheckoutHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := chi.URLParam(r, "sessionID")

	order, err := h.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		handleRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order.Totals())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func handleRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "order_not_found"})
		return
	}
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal_error"})
}
