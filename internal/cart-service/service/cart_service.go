package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dadopl/poc-nocart/internal/cart-service/catalog"
	"github.com/dadopl/poc-nocart/internal/cart-service/domain"
	"github.com/dadopl/poc-nocart/internal/cart-service/repository"
	"github.com/dadopl/poc-nocart/internal/pkg/event"
	"github.com/dadopl/poc-nocart/internal/pkg/money"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// EventPublisher hands finished envelopes to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, env event.Envelope) error
}

// AddItemCommand carries caller-supplied item data. Name and Price are
// optional; when absent they are resolved from the catalog by offer id.
type AddItemCommand struct {
	OfferID       int64
	Type          string
	Name          string
	Price         float64
	Quantity      int
	ParentItemID  string
	CorrelationID string
}

type CartService struct {
	repo      repository.CartRepository
	publisher EventPublisher
	catalog   catalog.Catalog
	sfg       singleflight.Group // Prevents read stampede on hot carts
}

func NewCartService(repo repository.CartRepository, publisher EventPublisher, cat catalog.Catalog) *CartService {
	return &CartService{
		repo:      repo,
		publisher: publisher,
		catalog:   cat,
	}
}

// GetCart returns the user's cart, or a fresh empty one if none is stored.
// The fresh cart is not persisted until the first mutating command.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.repo.FindByUserID(ctx, userID)
		if errors.Is(err, repository.ErrCartNotFound) {
			return domain.NewCart(uuid.NewString(), userID), nil
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem loads or creates the cart, appends the line and publishes the
// recorded events. Returns the generated item id.
func (s *CartService) AddItem(ctx context.Context, userID string, cmd AddItemCommand) (string, error) {
	quantity, err := money.NewQuantity(cmd.Quantity)
	if err != nil {
		return "", err
	}

	cart, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.NewCart(uuid.NewString(), userID)
	} else if err != nil {
		return "", err
	}

	name, unitPrice := s.resolveOffer(cmd)

	itemID := uuid.NewString()
	cart.AddItem(itemID, cmd.OfferID, domain.ItemType(cmd.Type), name, unitPrice, quantity, cmd.ParentItemID, cmd.CorrelationID)

	if err := s.persistAndPublish(ctx, cart); err != nil {
		return "", err
	}
	return itemID, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID, correlationID string) error {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := cart.RemoveItem(itemID, correlationID); err != nil {
		return err
	}
	return s.persistAndPublish(ctx, cart)
}

func (s *CartService) ChangeQuantity(ctx context.Context, userID, itemID string, newQuantity int, correlationID string) error {
	quantity, err := money.NewQuantity(newQuantity)
	if err != nil {
		return err
	}

	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := cart.ChangeQuantity(itemID, quantity, correlationID); err != nil {
		return err
	}
	return s.persistAndPublish(ctx, cart)
}

// ClearCart is a no-op when no cart is stored for the user.
func (s *CartService) ClearCart(ctx context.Context, userID, correlationID string) error {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	cart.Clear(correlationID)
	return s.persistAndPublish(ctx, cart)
}

func (s *CartService) resolveOffer(cmd AddItemCommand) (string, money.Money) {
	name := cmd.Name
	price := money.FromFloat(cmd.Price, money.DefaultCurrency)

	if name != "" && cmd.Price > 0 {
		return name, price
	}

	product, err := s.catalog.Product(cmd.OfferID)
	if err != nil {
		if name == "" {
			name = "Unknown"
		}
		return name, price
	}
	if name == "" {
		name = product.Name
	}
	if cmd.Price <= 0 {
		price = product.Price
	}
	return name, price
}

// persistAndPublish saves the cart first, then drains the event buffer to
// the bus. A failed publish is logged and skipped; the write-model state is
// already durable at that point.
func (s *CartService) persistAndPublish(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.Save(ctx, cart); err != nil {
		return err
	}

	for _, e := range cart.PullEvents() {
		env := event.New(e.EventName(), e.AggregateID(), e.Payload(), e.CorrelationID())
		if err := s.publisher.Publish(ctx, env); err != nil {
			slog.Error("failed to publish cart event",
				slog.String("event_name", e.EventName()),
				slog.String("cart_id", e.AggregateID()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
