package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dadopl/poc-nocart/internal/cart-service/domain"
	"github.com/redis/go-redis/v9"
)

const cartTTL = 7 * 24 * time.Hour

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    cartTTL,
	}
}

// RedisRepository stores the full cart record under cart:<userId> with a
// sliding expiry: every save resets the TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisRepository) FindByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	cart, err := domain.CartFromJSON(data)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *RedisRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := cart.ToJSON()
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
