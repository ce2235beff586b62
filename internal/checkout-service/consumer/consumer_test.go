package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
	"github.com/dadopl/poc-nocart/internal/checkout-service/repository"
	"github.com/dadopl/poc-nocart/internal/pkg/event"
	"github.com/dadopl/poc-nocart/internal/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one registration per test binary; MustRegister panics on a second call
var testMetrics = metrics.NewConsumerMetrics("checkout_test")

type mockOrderRepo struct {
	orders  map[string]*domain.CheckoutOrder
	findErr error
	saveErr error
	saves   int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*domain.CheckoutOrder)}
}

func (m *mockOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*domain.CheckoutOrder, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	order, ok := m.orders[sessionID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) Save(_ context.Context, order *domain.CheckoutOrder) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.orders[order.SessionID] = order
	return nil
}

func newTestConsumer() (*Consumer, *mockOrderRepo) {
	repo := newMockOrderRepo()
	return New(repo, testMetrics), repo
}

func rawItemAdded(t *testing.T, eventID, sessionID, itemID string) []byte {
	t.Helper()
	env := event.Envelope{
		EventID:     eventID,
		EventName:   "CartItemAdded",
		AggregateID: sessionID,
		Payload: map[string]any{
			"cart_id":        sessionID,
			"item_id":        itemID,
			"item_type":      "product",
			"offer_id":       123,
			"quantity":       1,
			"price_amount":   599900,
			"price_currency": "PLN",
		},
	}
	raw, err := env.ToJSON()
	require.NoError(t, err)
	return raw
}

func TestProcessRaw_CreatesAndSavesProjection(t *testing.T) {
	c, repo := newTestConsumer()

	c.ProcessRaw(context.Background(), rawItemAdded(t, "evt-1", "sess-1", "item-1"))

	order := repo.orders["sess-1"]
	require.NotNil(t, order)
	assert.Len(t, order.Cart.Items, 1)
	assert.Equal(t, int64(599900), order.Cart.TotalCents)
	assert.True(t, order.WasEventProcessed("evt-1"))
	assert.Equal(t, 1, repo.saves)
}

func TestProcessRaw_DuplicateNotSavedAgain(t *testing.T) {
	c, repo := newTestConsumer()
	raw := rawItemAdded(t, "evt-1", "sess-1", "item-1")

	c.ProcessRaw(context.Background(), raw)
	c.ProcessRaw(context.Background(), raw)

	assert.Equal(t, 1, repo.saves)
	assert.Len(t, repo.orders["sess-1"].Cart.Items, 1)
}

func TestProcessRaw_UndecodableDropped(t *testing.T) {
	c, repo := newTestConsumer()

	c.ProcessRaw(context.Background(), []byte("{not json"))

	assert.Empty(t, repo.orders)
}

func TestProcessRaw_NoSessionIDDropped(t *testing.T) {
	c, repo := newTestConsumer()

	env := event.Envelope{
		EventID:   "evt-1",
		EventName: "CartItemAdded",
		Payload:   map[string]any{},
	}
	raw, err := env.ToJSON()
	require.NoError(t, err)

	c.ProcessRaw(context.Background(), raw)

	assert.Empty(t, repo.orders)
}

func TestProcessRaw_MalformedPayloadDropped(t *testing.T) {
	c, repo := newTestConsumer()

	env := event.Envelope{
		EventID:     "evt-1",
		EventName:   "CartItemAdded",
		AggregateID: "sess-1",
		Payload:     map[string]any{"item_id": "item-1"},
	}
	raw, err := env.ToJSON()
	require.NoError(t, err)

	c.ProcessRaw(context.Background(), raw)

	// nothing persisted; a corrected redelivery can still apply
	assert.Empty(t, repo.orders)
}

func TestProcessRaw_LoadErrorDropped(t *testing.T) {
	c, repo := newTestConsumer()
	repo.findErr = errors.New("redis down")

	c.ProcessRaw(context.Background(), rawItemAdded(t, "evt-1", "sess-1", "item-1"))

	assert.Equal(t, 0, repo.saves)
}

func TestProcessRaw_UnknownEventStillSaved(t *testing.T) {
	c, repo := newTestConsumer()

	env := event.Envelope{
		EventID:     "evt-1",
		EventName:   "warehouse.stock_reserved",
		AggregateID: "sess-1",
		Payload:     map[string]any{},
	}
	raw, err := env.ToJSON()
	require.NoError(t, err)

	c.ProcessRaw(context.Background(), raw)

	order := repo.orders["sess-1"]
	require.NotNil(t, order)
	assert.Empty(t, order.Cart.Items)
	assert.True(t, order.WasEventProcessed("evt-1"))
}

func TestProcessRaw_FoldsAcrossProducers(t *testing.T) {
	c, repo := newTestConsumer()
	ctx := context.Background()

	c.ProcessRaw(ctx, rawItemAdded(t, "evt-1", "sess-1", "item-1"))

	shipping := event.Envelope{
		EventID:     "evt-2",
		EventName:   "shipping.method_selected",
		AggregateID: "sess-1",
		Payload: map[string]any{
			"session_id":     "sess-1",
			"method_id":      "dpd",
			"method_name":    "Kurier DPD",
			"price_amount":   1599,
			"price_currency": "PLN",
		},
	}
	raw, err := shipping.ToJSON()
	require.NoError(t, err)
	c.ProcessRaw(ctx, raw)

	order := repo.orders["sess-1"]
	require.NotNil(t, order)
	assert.Equal(t, int64(1599), order.Shipping.Cost)
	assert.Equal(t, int64(599900+1599), order.GrandTotal())
	assert.Equal(t, 2, repo.saves)
}
