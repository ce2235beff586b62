package repository

import (
	"context"
	"errors"

	"github.com/dadopl/poc-nocart/internal/cart-service/domain"
)

var ErrCartNotFound = errors.New("cart not found")

type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
