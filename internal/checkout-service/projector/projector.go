// Package projector folds external domain events into the CheckoutOrder
// projection. Each apply call is a pure, non-blocking state transition;
// loading and persisting the snapshot is the caller's job.
package projector

import (
	"errors"

	"github.com/dadopl/poc-nocart/internal/checkout-service/domain"
	"github.com/dadopl/poc-nocart/internal/pkg/event"
)

var ErrNoSessionID = errors.New("event has no routable session id")

// Status reports what an Apply call did with the event.
type Status int

const (
	// StatusApplied means the event's fold ran; the order must be saved.
	StatusApplied Status = iota
	// StatusDuplicate means the idempotency ledger suppressed a redelivery;
	// nothing changed, nothing to save.
	StatusDuplicate
	// StatusUnknown means the event name is not in the dispatch table. The
	// snapshots are untouched but the event id entered the ledger, so the
	// order must still be saved.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusDuplicate:
		return "duplicate"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

type foldFn func(o *domain.CheckoutOrder, payload map[string]any) error

type Projector struct {
	folds map[string]foldFn
}

// New builds the dispatch table with every alias registered explicitly,
// both the structured event name and the dotted topic-style name.
func New() *Projector {
	p := &Projector{folds: make(map[string]foldFn)}

	p.register(foldCartItemAdded, "CartItemAdded", "cart.item_added")
	p.register(foldCartItemRemoved, "CartItemRemoved", "cart.item_removed")
	p.register(foldCartItemQuantityChanged, "CartItemQuantityChanged", "cart.item_quantity_changed")
	p.register(foldCartCleared, "CartCleared", "cart.cleared")

	p.register(foldShippingMethodSelected, "ShippingMethodSelected", "shipping.method_selected")
	p.register(foldShippingAddressProvided, "ShippingAddressProvided", "shipping.address_provided")
	p.register(foldShippingDeliveryDateSelected, "ShippingDeliveryDateSelected", "shipping.delivery_date_selected")

	p.register(foldPromotionApplied, "PromotionApplied", "promotion.applied")
	p.register(foldPromotionRemoved, "PromotionRemoved", "promotion.removed")
	p.register(foldPromoCodeApplied, "PromoCodeApplied", "promotion.code_applied")

	p.register(foldServiceSelected, "ServiceSelected", "services.selected")
	p.register(foldServiceRemoved, "ServiceRemoved", "services.removed")
	p.register(foldServicesAvailabilityCalculated, "ServicesAvailabilityCalculated", "services.availability_calculated")

	p.register(foldPaymentMethodSelected, "PaymentMethodSelected", "payment.method_selected")
	p.register(foldPaymentInitialized, "PaymentInitialized", "payment.initialized")
	p.register(foldPaymentSucceeded, "PaymentSucceeded", "payment.succeeded")
	p.register(foldPaymentFailed, "PaymentFailed", "payment.failed")

	return p
}

func (p *Projector) register(fn foldFn, names ...string) {
	for _, name := range names {
		p.folds[name] = fn
	}
}

// ExtractSessionID resolves the session key an event files under, in
// priority order: payload.session_id, payload.cart_id, the envelope's
// aggregate id.
func ExtractSessionID(env event.Envelope) string {
	if id, ok := env.Payload["session_id"].(string); ok && id != "" {
		return id
	}
	if id, ok := env.Payload["cart_id"].(string); ok && id != "" {
		return id
	}
	return env.AggregateID
}

// Apply folds one envelope into the order. A nil order is created for the
// envelope's session. Duplicates return the order unchanged; unknown event
// names touch only the ledger; a malformed payload returns an error with no
// state change. The caller persists the order unless the status says
// otherwise.
func (p *Projector) Apply(order *domain.CheckoutOrder, env event.Envelope) (*domain.CheckoutOrder, Status, error) {
	sessionID := ExtractSessionID(env)
	if sessionID == "" {
		return order, StatusUnknown, ErrNoSessionID
	}

	if order == nil {
		order = domain.NewCheckoutOrder(sessionID)
	}

	if env.EventID != "" && order.WasEventProcessed(env.EventID) {
		return order, StatusDuplicate, nil
	}

	status := StatusApplied
	fold, ok := p.folds[env.EventName]
	if !ok {
		status = StatusUnknown
	} else if err := fold(order, env.Payload); err != nil {
		return order, status, err
	}

	if env.EventID != "" {
		order.MarkEventProcessed(env.EventID)
	}

	return order, status, nil
}

// ---- fold functions ----

func foldCartItemAdded(o *domain.CheckoutOrder, payload map[string]any) error {
	var p cartItemAddedPayload
	required := []string{"item_id", "item_type", "offer_id", "quantity", "price_amount", "price_currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyCartItemAdded(domain.CartSnapshotItem{
		ItemID:        p.ItemID,
		ItemType:      p.ItemType,
		OfferID:       p.OfferID,
		Quantity:      p.Quantity,
		PriceAmount:   p.PriceAmount,
		PriceCurrency: p.PriceCurrency,
		ParentItemID:  p.ParentItemID,
	})
	return nil
}

func foldCartItemRemoved(o *domain.CheckoutOrder, payload map[string]any) error {
	var p cartItemRemovedPayload
	if err := decodePayload(payload, []string{"item_id"}, &p); err != nil {
		return err
	}
	o.ApplyCartItemRemoved(p.ItemID)
	return nil
}

func foldCartItemQuantityChanged(o *domain.CheckoutOrder, payload map[string]any) error {
	var p cartItemQuantityChangedPayload
	if err := decodePayload(payload, []string{"item_id", "new_quantity"}, &p); err != nil {
		return err
	}
	o.ApplyCartItemQuantityChanged(p.ItemID, p.NewQuantity)
	return nil
}

func foldCartCleared(o *domain.CheckoutOrder, _ map[string]any) error {
	o.ApplyCartCleared()
	return nil
}

func foldShippingMethodSelected(o *domain.CheckoutOrder, payload map[string]any) error {
	var p shippingMethodSelectedPayload
	required := []string{"method_id", "method_name", "price_amount", "price_currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyShippingMethodSelected(p.MethodID, p.MethodName, p.PriceAmount, p.PriceCurrency)
	return nil
}

func foldShippingAddressProvided(o *domain.CheckoutOrder, payload map[string]any) error {
	var p shippingAddressProvidedPayload
	required := []string{"street", "city", "postal_code", "country"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyShippingAddressProvided(domain.ShippingAddress{
		Street:     p.Street,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	})
	return nil
}

func foldShippingDeliveryDateSelected(o *domain.CheckoutOrder, payload map[string]any) error {
	var p shippingDeliveryDateSelectedPayload
	required := []string{"delivery_date", "is_express"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	// express_fee_amount is optional and defaults to 0
	o.ApplyShippingDeliveryDateSelected(p.DeliveryDate, p.IsExpress, p.ExpressFeeAmount)
	return nil
}

func foldPromotionApplied(o *domain.CheckoutOrder, payload map[string]any) error {
	var p promotionAppliedPayload
	required := []string{"promotion_id", "promotion_name", "discount_amount", "discount_currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyPromotionApplied(domain.AppliedPromotion{
		PromotionID:      p.PromotionID,
		PromotionName:    p.PromotionName,
		DiscountAmount:   p.DiscountAmount,
		DiscountCurrency: p.DiscountCurrency,
	})
	return nil
}

func foldPromotionRemoved(o *domain.CheckoutOrder, payload map[string]any) error {
	var p promotionRemovedPayload
	if err := decodePayload(payload, []string{"promotion_id"}, &p); err != nil {
		return err
	}
	o.ApplyPromotionRemoved(p.PromotionID)
	return nil
}

func foldPromoCodeApplied(o *domain.CheckoutOrder, payload map[string]any) error {
	var p promoCodeAppliedPayload
	required := []string{"code", "discount_amount", "discount_currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyPromoCodeApplied(domain.AppliedPromoCode{
		Code:             p.Code,
		DiscountAmount:   p.DiscountAmount,
		DiscountCurrency: p.DiscountCurrency,
	}, p.PromotionID)
	return nil
}

func foldServiceSelected(o *domain.CheckoutOrder, payload map[string]any) error {
	var p serviceSelectedPayload
	required := []string{"service_id", "service_name", "price", "currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyServiceSelected(domain.SelectedService{
		ServiceID:   p.ServiceID,
		ServiceName: p.ServiceName,
		Price:       p.Price,
		Currency:    p.Currency,
	})
	return nil
}

func foldServiceRemoved(o *domain.CheckoutOrder, payload map[string]any) error {
	var p serviceRemovedPayload
	if err := decodePayload(payload, []string{"service_id"}, &p); err != nil {
		return err
	}
	o.ApplyServiceRemoved(p.ServiceID)
	return nil
}

func foldServicesAvailabilityCalculated(o *domain.CheckoutOrder, _ map[string]any) error {
	o.ApplyServicesAvailabilityCalculated()
	return nil
}

func foldPaymentMethodSelected(o *domain.CheckoutOrder, payload map[string]any) error {
	var p paymentMethodSelectedPayload
	if err := decodePayload(payload, []string{"method_id", "method_name"}, &p); err != nil {
		return err
	}
	o.ApplyPaymentMethodSelected(p.MethodID, p.MethodName)
	return nil
}

func foldPaymentInitialized(o *domain.CheckoutOrder, payload map[string]any) error {
	var p paymentInitializedPayload
	required := []string{"transaction_id", "method_id", "amount_total", "currency"}
	if err := decodePayload(payload, required, &p); err != nil {
		return err
	}
	o.ApplyPaymentInitialized(p.TransactionID, p.MethodID, p.AmountTotal, p.Currency)
	return nil
}

func foldPaymentSucceeded(o *domain.CheckoutOrder, payload map[string]any) error {
	var p paymentSucceededPayload
	if err := decodePayload(payload, []string{"transaction_id", "order_id"}, &p); err != nil {
		return err
	}
	o.ApplyPaymentSucceeded(p.TransactionID, p.OrderID)
	return nil
}

func foldPaymentFailed(o *domain.CheckoutOrder, payload map[string]any) error {
	var p paymentFailedPayload
	if err := decodePayload(payload, []string{"transaction_id", "reason"}, &p); err != nil {
		return err
	}
	o.ApplyPaymentFailed(p.TransactionID, p.Reason)
	return nil
}
