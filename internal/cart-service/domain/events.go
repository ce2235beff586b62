package domain

// DomainEvent is what the cart aggregate records for outward notification.
// Events never reconstruct the aggregate; they only feed the bus.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	Payload() map[string]any
	CorrelationID() string
}

type CartItemAdded struct {
	CartID        string
	ItemID        string
	ItemType      string
	OfferID       int64
	Quantity      int
	PriceAmount   int64
	PriceCurrency string
	ParentItemID  string
	Correlation   string
}

func (e CartItemAdded) EventName() string     { return "CartItemAdded" }
func (e CartItemAdded) AggregateID() string   { return e.CartID }
func (e CartItemAdded) CorrelationID() string { return e.Correlation }

func (e CartItemAdded) Payload() map[string]any {
	p := map[string]any{
		"cart_id":        e.CartID,
		"item_id":        e.ItemID,
		"item_type":      e.ItemType,
		"offer_id":       e.OfferID,
		"quantity":       e.Quantity,
		"price_amount":   e.PriceAmount,
		"price_currency": e.PriceCurrency,
	}
	if e.ParentItemID != "" {
		p["parent_item_id"] = e.ParentItemID
	}
	return p
}

type CartItemRemoved struct {
	CartID      string
	ItemID      string
	ItemType    string
	Correlation string
}

func (e CartItemRemoved) EventName() string     { return "CartItemRemoved" }
func (e CartItemRemoved) AggregateID() string   { return e.CartID }
func (e CartItemRemoved) CorrelationID() string { return e.Correlation }

func (e CartItemRemoved) Payload() map[string]any {
	return map[string]any{
		"cart_id":   e.CartID,
		"item_id":   e.ItemID,
		"item_type": e.ItemType,
	}
}

type CartItemQuantityChanged struct {
	CartID      string
	ItemID      string
	OldQuantity int
	NewQuantity int
	Correlation string
}

func (e CartItemQuantityChanged) EventName() string     { return "CartItemQuantityChanged" }
func (e CartItemQuantityChanged) AggregateID() string   { return e.CartID }
func (e CartItemQuantityChanged) CorrelationID() string { return e.Correlation }

func (e CartItemQuantityChanged) Payload() map[string]any {
	return map[string]any{
		"cart_id":      e.CartID,
		"item_id":      e.ItemID,
		"old_quantity": e.OldQuantity,
		"new_quantity": e.NewQuantity,
	}
}

type CartCleared struct {
	CartID      string
	Correlation string
}

func (e CartCleared) EventName() string     { return "CartCleared" }
func (e CartCleared) AggregateID() string   { return e.CartID }
func (e CartCleared) CorrelationID() string { return e.Correlation }

func (e CartCleared) Payload() map[string]any {
	return map[string]any{
		"cart_id": e.CartID,
	}
}
