package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
	"github.com/redis/go-redis/v9"
)

const orderTTL = 24 * time.Hour

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    orderTTL,
	}
}

// RedisRepository keeps the projection under checkout:order:<sessionId>
// with a sliding 24h expiry. Losing the store is recoverable; the
// projection rebuilds from the event log.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.CheckoutOrder, error) {
	data, err := r.client.Get(ctx, orderKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	order, err := domain.CheckoutOrderFromJSON(data)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *RedisRepository) Save(ctx context.Context, order *domain.CheckoutOrder) error {
	data, err := order.ToJSON()
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, orderKey(order.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func orderKey(sessionID string) string {
	return fmt.Sprintf("checkout:order:%s", sessionID)
}
