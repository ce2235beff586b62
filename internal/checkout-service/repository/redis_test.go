package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisRepository, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	repo := NewRedisRepository(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return repo, mr, cleanup
}

func sampleOrder() *domain.CheckoutOrder {
	order := domain.NewCheckoutOrder("sess-1")
	order.ApplyCartItemAdded(domain.CartSnapshotItem{
		ItemID:        "item-1",
		ItemType:      "product",
		OfferID:       123,
		Quantity:      1,
		PriceAmount:   599900,
		PriceCurrency: "PLN",
	})
	order.MarkEventProcessed("evt-1")
	return order
}

func TestSaveAndFind(t *testing.T) {
	repo, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, order.SessionID, found.SessionID)
	assert.Equal(t, order.Cart.Items, found.Cart.Items)
	assert.Equal(t, int64(599900), found.Cart.TotalCents)
	assert.True(t, found.WasEventProcessed("evt-1"))
}

func TestFind_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := repo.FindBySessionID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestFind_CorruptRecord(t *testing.T) {
	repo, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set("checkout:order:sess-1", "{broken")

	_, err := repo.FindBySessionID(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestSave_SetsSlidingTTL(t *testing.T) {
	repo, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, repo.Save(ctx, order))
	assert.Equal(t, 24*time.Hour, mr.TTL("checkout:order:sess-1"))

	mr.FastForward(time.Hour)
	require.NoError(t, repo.Save(ctx, order))
	assert.Equal(t, 24*time.Hour, mr.TTL("checkout:order:sess-1"))
}
