package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dadopl/poc-nocart/internal/pkg/money"
)

// maxProcessedEvents bounds the idempotency ledger. Evicting oldest-first
// reopens a narrow window where a very old duplicate could be reprocessed;
// accepted tradeoff to keep the snapshot small.
const maxProcessedEvents = 100

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// CheckoutOrder is the consolidated read view of one purchase session,
// rebuilt by folding events from the cart, shipping, promotion, services and
// payment producers. It is mutated only by the projector and is fully
// reconstructible by replaying the event log.
type CheckoutOrder struct {
	SessionID         string            `json:"session_id"`
	UserID            string            `json:"user_id,omitempty"`
	Status            string            `json:"status"`
	Cart              CartSnapshot      `json:"cart_snapshot"`
	Shipping          ShippingSnapshot  `json:"shipping_snapshot"`
	Promotion         PromotionSnapshot `json:"promotion_snapshot"`
	Services          ServicesSnapshot  `json:"services_snapshot"`
	Payment           PaymentSnapshot   `json:"payment_snapshot"`
	ProcessedEventIDs []string          `json:"processed_event_ids"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func NewCheckoutOrder(sessionID string) *CheckoutOrder {
	now := time.Now().UTC()
	return &CheckoutOrder{
		SessionID: sessionID,
		Status:    StatusPending,
		Cart: CartSnapshot{
			Items:    make(map[string]CartSnapshotItem),
			Currency: money.DefaultCurrency,
		},
		Shipping: ShippingSnapshot{Currency: money.DefaultCurrency},
		Promotion: PromotionSnapshot{
			Applied:  make(map[string]AppliedPromotion),
			Codes:    make(map[string]AppliedPromoCode),
			Currency: money.DefaultCurrency,
		},
		Services: ServicesSnapshot{
			Selected: make(map[string]SelectedService),
			Currency: money.DefaultCurrency,
		},
		Payment:   PaymentSnapshot{Currency: money.DefaultCurrency},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ---- idempotency ledger ----

func (o *CheckoutOrder) WasEventProcessed(eventID string) bool {
	for _, id := range o.ProcessedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

func (o *CheckoutOrder) MarkEventProcessed(eventID string) {
	o.ProcessedEventIDs = append(o.ProcessedEventIDs, eventID)
	if len(o.ProcessedEventIDs) > maxProcessedEvents {
		o.ProcessedEventIDs = o.ProcessedEventIDs[len(o.ProcessedEventIDs)-maxProcessedEvents:]
	}
	o.touch()
}

// ---- cart folds ----

func (o *CheckoutOrder) ApplyCartItemAdded(item CartSnapshotItem) {
	o.Cart.Items[item.ItemID] = item
	o.recalculateCartTotal()
	o.touch()
}

// ApplyCartItemRemoved deletes the item and every item parented to it; the
// same one-level cascade the write-model performs.
func (o *CheckoutOrder) ApplyCartItemRemoved(itemID string) {
	delete(o.Cart.Items, itemID)
	for id, item := range o.Cart.Items {
		if item.ParentItemID == itemID {
			delete(o.Cart.Items, id)
		}
	}
	o.recalculateCartTotal()
	o.touch()
}

// ApplyCartItemQuantityChanged silently no-ops when the item has not been
// seen yet (a QuantityChanged reordered ahead of its ItemAdded).
func (o *CheckoutOrder) ApplyCartItemQuantityChanged(itemID string, newQuantity int) {
	if item, ok := o.Cart.Items[itemID]; ok {
		item.Quantity = newQuantity
		o.Cart.Items[itemID] = item
	}
	o.recalculateCartTotal()
	o.touch()
}

func (o *CheckoutOrder) ApplyCartCleared() {
	o.Cart.Items = make(map[string]CartSnapshotItem)
	o.Cart.TotalCents = 0
	o.touch()
}

func (o *CheckoutOrder) recalculateCartTotal() {
	var total int64
	for _, item := range o.Cart.Items {
		total += item.PriceAmount * int64(item.Quantity)
	}
	o.Cart.TotalCents = total
}

// ---- shipping folds ----

func (o *CheckoutOrder) ApplyShippingMethodSelected(methodID, methodName string, cost int64, currency string) {
	o.Shipping.MethodID = methodID
	o.Shipping.MethodName = methodName
	o.Shipping.Cost = cost
	o.Shipping.Currency = currency
	o.touch()
}

func (o *CheckoutOrder) ApplyShippingAddressProvided(addr ShippingAddress) {
	o.Shipping.Address = &addr
	o.touch()
}

func (o *CheckoutOrder) ApplyShippingDeliveryDateSelected(deliveryDate string, isExpress bool, expressFee int64) {
	o.Shipping.DeliveryDate = deliveryDate
	o.Shipping.IsExpress = isExpress
	o.Shipping.ExpressFee = expressFee
	o.touch()
}

// ---- promotion folds ----

func (o *CheckoutOrder) ApplyPromotionApplied(p AppliedPromotion) {
	o.Promotion.Applied[p.PromotionID] = p
	o.recalculatePromotionDiscount()
	o.touch()
}

func (o *CheckoutOrder) ApplyPromotionRemoved(promotionID string) {
	delete(o.Promotion.Applied, promotionID)
	o.recalculatePromotionDiscount()
	o.touch()
}

// ApplyPromoCodeApplied records the code and, when the applying service
// resolved it to a promotion id, mirrors it into the applied map so the
// discount computation stays uniform. Both maps are summed independently;
// the same promotion appearing in both with overlapping amounts counts
// twice. Known behavior, pending product sign-off.
func (o *CheckoutOrder) ApplyPromoCodeApplied(c AppliedPromoCode, promotionID string) {
	o.Promotion.Codes[c.Code] = c
	if promotionID != "" {
		o.Promotion.Applied[promotionID] = AppliedPromotion{
			PromotionID:      promotionID,
			PromotionName:    c.Code,
			DiscountAmount:   c.DiscountAmount,
			DiscountCurrency: c.DiscountCurrency,
		}
	}
	o.recalculatePromotionDiscount()
	o.touch()
}

func (o *CheckoutOrder) recalculatePromotionDiscount() {
	var total int64
	for _, p := range o.Promotion.Applied {
		total += p.DiscountAmount
	}
	for _, c := range o.Promotion.Codes {
		total += c.DiscountAmount
	}
	o.Promotion.TotalDiscount = total
}

// ---- services folds ----

func (o *CheckoutOrder) ApplyServiceSelected(s SelectedService) {
	o.Services.Selected[s.ServiceID] = s
	o.recalculateServicesCost()
	o.touch()
}

func (o *CheckoutOrder) ApplyServiceRemoved(serviceID string) {
	delete(o.Services.Selected, serviceID)
	o.recalculateServicesCost()
	o.touch()
}

// ApplyServicesAvailabilityCalculated informs about available services only;
// it does not change the selection.
func (o *CheckoutOrder) ApplyServicesAvailabilityCalculated() {
	o.touch()
}

func (o *CheckoutOrder) recalculateServicesCost() {
	var total int64
	for _, s := range o.Services.Selected {
		total += s.Price
	}
	o.Services.TotalCost = total
}

// ---- payment folds ----

func (o *CheckoutOrder) ApplyPaymentMethodSelected(methodID, methodName string) {
	o.Payment.MethodID = methodID
	o.Payment.MethodName = methodName
	o.Payment.Status = "selected"
	o.touch()
}

func (o *CheckoutOrder) ApplyPaymentInitialized(transactionID, methodID string, amount int64, currency string) {
	o.Payment.TransactionID = transactionID
	o.Payment.MethodID = methodID
	o.Payment.Amount = amount
	o.Payment.Currency = currency
	o.Payment.Status = "initialized"
	o.touch()
}

func (o *CheckoutOrder) ApplyPaymentSucceeded(transactionID, orderID string) {
	o.Payment.TransactionID = transactionID
	o.Payment.OrderID = orderID
	o.Payment.Status = "succeeded"
	o.Payment.FailureReason = ""
	o.Status = StatusPaid
	o.touch()
}

func (o *CheckoutOrder) ApplyPaymentFailed(transactionID, reason string) {
	o.Payment.TransactionID = transactionID
	o.Payment.Status = "failed"
	o.Payment.FailureReason = reason
	o.touch()
}

// ---- totals ----

// GrandTotal never goes below zero even when the discount exceeds the
// remaining charges.
func (o *CheckoutOrder) GrandTotal() int64 {
	subtotal := o.Cart.TotalCents
	shippingCost := o.Shipping.Cost + o.Shipping.ExpressFee
	grandTotal := subtotal + shippingCost - o.Promotion.TotalDiscount + o.Services.TotalCost
	if grandTotal < 0 {
		return 0
	}
	return grandTotal
}

type Totals struct {
	Subtotal          money.Money `json:"subtotal"`
	ShippingCost      money.Money `json:"shipping_cost"`
	PromotionDiscount money.Money `json:"promotion_discount"`
	ServicesCost      money.Money `json:"services_cost"`
	GrandTotal        money.Money `json:"grand_total"`
}

func (o *CheckoutOrder) Totals() Totals {
	return Totals{
		Subtotal:          money.FromCents(o.Cart.TotalCents, o.Cart.Currency),
		ShippingCost:      money.FromCents(o.Shipping.Cost+o.Shipping.ExpressFee, o.Shipping.Currency),
		PromotionDiscount: money.FromCents(o.Promotion.TotalDiscount, o.Promotion.Currency),
		ServicesCost:      money.FromCents(o.Services.TotalCost, o.Services.Currency),
		GrandTotal:        money.FromCents(o.GrandTotal(), money.DefaultCurrency),
	}
}

func (o *CheckoutOrder) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// ---- serialization ----

func (o *CheckoutOrder) ToJSON() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout order failed: %w", err)
	}
	return data, nil
}

func CheckoutOrderFromJSON(data []byte) (*CheckoutOrder, error) {
	var order CheckoutOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal checkout order failed: %w", err)
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	if order.Cart.Items == nil {
		order.Cart.Items = make(map[string]CartSnapshotItem)
	}
	if order.Promotion.Applied == nil {
		order.Promotion.Applied = make(map[string]AppliedPromotion)
	}
	if order.Promotion.Codes == nil {
		order.Promotion.Codes = make(map[string]AppliedPromoCode)
	}
	if order.Services.Selected == nil {
		order.Services.Selected = make(map[string]SelectedService)
	}
	return &order, nil
}
