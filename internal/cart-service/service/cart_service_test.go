package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dadopl/poc-nocart/internal/cart-service/catalog"
	"github.com/dadopl/poc-nocart/internal/cart-service/domain"
	"github.com/dadopl/poc-nocart/internal/cart-service/repository"
	"github.com/dadopl/poc-nocart/internal/pkg/event"
	"github.com/dadopl/poc-nocart/internal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	carts   map[string]*domain.Cart
	findErr error
	saveErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepo) FindByUserID(_ context.Context, userID string) (*domain.Cart, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	cart, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockRepo) Save(_ context.Context, cart *domain.Cart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockRepo) Delete(_ context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}

type mockPublisher struct {
	published []event.Envelope
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, env event.Envelope) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, env)
	return nil
}

func newTestService() (*CartService, *mockRepo, *mockPublisher) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	return NewCartService(repo, pub, catalog.NewStaticCatalog()), repo, pub
}

func TestGetCart_ReturnsEmptyCartWhenNoneStored(t *testing.T) {
	svc, repo, _ := newTestService()

	cart, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cart.UserID)
	assert.True(t, cart.IsEmpty())
	// a fresh cart is not persisted until the first command
	assert.Empty(t, repo.carts)
}

func TestGetCart_PropagatesRepoError(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.findErr = errors.New("redis down")

	_, err := svc.GetCart(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestAddItem_CreatesCartAndPublishes(t *testing.T) {
	svc, repo, pub := newTestService()

	itemID, err := svc.AddItem(context.Background(), "user-1", AddItemCommand{
		OfferID:       123,
		Type:          "product",
		Name:          "Laptop Dell XPS 15",
		Price:         5999.00,
		Quantity:      1,
		CorrelationID: "corr-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, itemID)

	cart := repo.carts["user-1"]
	require.NotNil(t, cart)
	item, ok := cart.Item(itemID)
	require.True(t, ok)
	assert.Equal(t, int64(599900), item.UnitPrice.Amount)

	require.Len(t, pub.published, 1)
	env := pub.published[0]
	assert.Equal(t, "CartItemAdded", env.EventName)
	assert.Equal(t, cart.ID, env.AggregateID)
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)
}

func TestAddItem_ResolvesNameAndPriceFromCatalog(t *testing.T) {
	svc, repo, _ := newTestService()

	itemID, err := svc.AddItem(context.Background(), "user-1", AddItemCommand{
		OfferID:  456,
		Type:     "warranty",
		Quantity: 1,
	})
	require.NoError(t, err)

	item, ok := repo.carts["user-1"].Item(itemID)
	require.True(t, ok)
	assert.Equal(t, "Gwarancja 36 miesięcy", item.Name)
	assert.Equal(t, int64(29900), item.UnitPrice.Amount)
}

func TestAddItem_UnknownOfferFallsBack(t *testing.T) {
	svc, repo, _ := newTestService()

	itemID, err := svc.AddItem(context.Background(), "user-1", AddItemCommand{
		OfferID:  31337,
		Type:     "product",
		Quantity: 2,
	})
	require.NoError(t, err)

	item, ok := repo.carts["user-1"].Item(itemID)
	require.True(t, ok)
	assert.Equal(t, "Unknown", item.Name)
	assert.Equal(t, int64(0), item.UnitPrice.Amount)
}

func TestAddItem_NegativeQuantityRejected(t *testing.T) {
	svc, _, pub := newTestService()

	_, err := svc.AddItem(context.Background(), "user-1", AddItemCommand{
		OfferID:  123,
		Type:     "product",
		Quantity: -1,
	})
	assert.ErrorIs(t, err, money.ErrInvalidQuantity)
	assert.Empty(t, pub.published)
}

func TestAddItem_PublishFailureDoesNotFailCommand(t *testing.T) {
	svc, repo, pub := newTestService()
	pub.err = errors.New("broker unreachable")

	itemID, err := svc.AddItem(context.Background(), "user-1", AddItemCommand{
		OfferID:  123,
		Type:     "product",
		Quantity: 1,
	})
	require.NoError(t, err)
	assert.True(t, repo.carts["user-1"].HasItem(itemID))
}

func TestRemoveItem_PublishesCascadeEvents(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	parentID, err := svc.AddItem(ctx, "user-1", AddItemCommand{OfferID: 123, Type: "product", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", AddItemCommand{OfferID: 456, Type: "warranty", Quantity: 1, ParentItemID: parentID})
	require.NoError(t, err)
	pub.published = nil

	require.NoError(t, svc.RemoveItem(ctx, "user-1", parentID, "corr-2"))

	require.Len(t, pub.published, 2)
	for _, env := range pub.published {
		assert.Equal(t, "CartItemRemoved", env.EventName)
		assert.Equal(t, "corr-2", env.CorrelationID)
	}
}

func TestRemoveItem_NoCart(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.RemoveItem(context.Background(), "user-1", "item-1", "")
	assert.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestChangeQuantity_PublishesEvent(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	itemID, err := svc.AddItem(ctx, "user-1", AddItemCommand{OfferID: 123, Type: "product", Quantity: 1})
	require.NoError(t, err)
	pub.published = nil

	require.NoError(t, svc.ChangeQuantity(ctx, "user-1", itemID, 3, ""))

	item, _ := repo.carts["user-1"].Item(itemID)
	assert.Equal(t, 3, item.Quantity.Value())
	require.Len(t, pub.published, 1)
	assert.Equal(t, "CartItemQuantityChanged", pub.published[0].EventName)
}

func TestChangeQuantity_UnknownItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", AddItemCommand{OfferID: 123, Type: "product", Quantity: 1})
	require.NoError(t, err)

	err = svc.ChangeQuantity(ctx, "user-1", "no-such-item", 3, "")
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestClearCart_NoopWhenAbsent(t *testing.T) {
	svc, _, pub := newTestService()

	require.NoError(t, svc.ClearCart(context.Background(), "user-1", ""))
	assert.Empty(t, pub.published)
}

func TestClearCart_EmptiesAndPublishes(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", AddItemCommand{OfferID: 123, Type: "product", Quantity: 1})
	require.NoError(t, err)
	pub.published = nil

	require.NoError(t, svc.ClearCart(ctx, "user-1", "corr-3"))

	assert.True(t, repo.carts["user-1"].IsEmpty())
	require.Len(t, pub.published, 1)
	assert.Equal(t, "CartCleared", pub.published[0].EventName)
}
