package projector

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedPayload = errors.New("event payload missing required field")

// One record type per event name. Required fields mirror the producer
// contracts; an envelope missing any of them is dropped at decode time
// rather than crashing a fold halfway through.

type cartItemAddedPayload struct {
	CartID        string `json:"cart_id"`
	ItemID        string `json:"item_id"`
	ItemType      string `json:"item_type"`
	OfferID       int64  `json:"offer_id"`
	Quantity      int    `json:"quantity"`
	PriceAmount   int64  `json:"price_amount"`
	PriceCurrency string `json:"price_currency"`
	ParentItemID  string `json:"parent_item_id"`
}

type cartItemRemovedPayload struct {
	ItemID string `json:"item_id"`
}

type cartItemQuantityChangedPayload struct {
	ItemID      string `json:"item_id"`
	NewQuantity int    `json:"new_quantity"`
}

type shippingMethodSelectedPayload struct {
	MethodID      string `json:"method_id"`
	MethodName    string `json:"method_name"`
	PriceAmount   int64  `json:"price_amount"`
	PriceCurrency string `json:"price_currency"`
}

type shippingAddressProvidedPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type shippingDeliveryDateSelectedPayload struct {
	DeliveryDate     string `json:"delivery_date"`
	IsExpress        bool   `json:"is_express"`
	ExpressFeeAmount int64  `json:"express_fee_amount"`
}

type promotionAppliedPayload struct {
	PromotionID      string `json:"promotion_id"`
	PromotionName    string `json:"promotion_name"`
	DiscountAmount   int64  `json:"discount_amount"`
	DiscountCurrency string `json:"discount_currency"`
}

type promotionRemovedPayload struct {
	PromotionID string `json:"promotion_id"`
}

type promoCodeAppliedPayload struct {
	Code             string `json:"code"`
	DiscountAmount   int64  `json:"discount_amount"`
	DiscountCurrency string `json:"discount_currency"`
	PromotionID      string `json:"promotion_id"`
}

type serviceSelectedPayload struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
}

type serviceRemovedPayload struct {
	ServiceID string `json:"service_id"`
}

type paymentMethodSelectedPayload struct {
	MethodID   string `json:"method_id"`
	MethodName string `json:"method_name"`
}

type paymentInitializedPayload struct {
	TransactionID string `json:"transaction_id"`
	MethodID      string `json:"method_id"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type paymentSucceededPayload struct {
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
}

type paymentFailedPayload struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// decodePayload checks the required keys are present in the raw map, then
// round-trips through JSON into the typed record. The round-trip normalises
// the float64 numbers a decoded payload map carries.
func decodePayload(payload map[string]any, required []string, dst any) error {
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			return fmt.Errorf("%w: %q", ErrMalformedPayload, key)
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("re-marshal payload failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
