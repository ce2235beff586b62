package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
	"github.com/dadopl/poc-nocart/internal/checkout-service/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderRepo struct {
	orders  map[string]*domain.CheckoutOrder
	findErr error
}

func (s *stubOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*domain.CheckoutOrder, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	order, ok := s.orders[sessionID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) Save(_ context.Context, order *domain.CheckoutOrder) error {
	s.orders[order.SessionID] = order
	return nil
}

func setupHandler(repo *stubOrderRepo) *chi.Mux {
	r := chi.NewRouter()
	NewCheckoutHandler(repo, 5*time.Second).Routes(r)
	return r
}

func paidOrder() *domain.CheckoutOrder {
	order := domain.NewCheckoutOrder("sess-1")
	order.ApplyCartItemAdded(domain.CartSnapshotItem{
		ItemID: "item-1", ItemType: "product", OfferID: 123,
		Quantity: 1, PriceAmount: 599900, PriceCurrency: "PLN",
	})
	order.ApplyShippingMethodSelected("dpd", "Kurier DPD", 1599, "PLN")
	order.ApplyPaymentSucceeded("tx-1", "order-9")
	return order
}

func TestGetOrder(t *testing.T) {
	repo := &stubOrderRepo{orders: map[string]*domain.CheckoutOrder{"sess-1": paidOrder()}}
	router := setupHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/checkout/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.CheckoutOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, domain.StatusPaid, resp.Status)
	assert.Len(t, resp.Cart.Items, 1)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := &stubOrderRepo{orders: map[string]*domain.CheckoutOrder{}}
	router := setupHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/checkout/nonexistent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "order_not_found", errResp.Code)
}

func TestGetOrder_RepoFailure(t *testing.T) {
	repo := &stubOrderRepo{findErr: errors.New("redis down")}
	router := setupHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/checkout/sess-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetTotals(t *testing.T) {
	repo := &stubOrderRepo{orders: map[string]*domain.CheckoutOrder{"sess-1": paidOrder()}}
	router := setupHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/checkout/sess-1/totals", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var totals domain.Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, int64(599900), totals.Subtotal.Amount)
	assert.Equal(t, int64(1599), totals.ShippingCost.Amount)
	assert.Equal(t, int64(599900+1599), totals.GrandTotal.Amount)
	assert.Equal(t, "PLN", totals.GrandTotal.Currency)
}
