package repository

import (
	"context"
	"errors"

	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
)

var ErrOrderNotFound = errors.New("checkout order not found")

type CheckoutOrderRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*domain.CheckoutOrder, error)
	Save(ctx context.Context, order *domain.CheckoutOrder) error
}
