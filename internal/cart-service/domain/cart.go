package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dadopl/poc-nocart/internal/pkg/money"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// Cart owns the line items of one user's purchase. Child items (warranty,
// accessory, service) reference their parent line via ParentItemID; removing
// a parent cascades exactly one level deep.
type Cart struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Items     map[string]CartItem `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	pendingEvents []DomainEvent
}

func NewCart(id, userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		UserID:    userID,
		Items:     make(map[string]CartItem),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem inserts the item unconditionally; an id collision overwrites the
// existing line. Callers are responsible for generating fresh ids. The
// parent reference is not validated here.
func (c *Cart) AddItem(itemID string, offerID int64, itemType ItemType, name string, unitPrice money.Money, quantity money.Quantity, parentItemID, correlationID string) {
	c.Items[itemID] = CartItem{
		ID:           itemID,
		OfferID:      offerID,
		Type:         itemType,
		Name:         name,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		ParentItemID: parentItemID,
	}
	c.touch()

	c.record(CartItemAdded{
		CartID:        c.ID,
		ItemID:        itemID,
		ItemType:      string(itemType),
		OfferID:       offerID,
		Quantity:      quantity.Value(),
		PriceAmount:   unitPrice.Amount,
		PriceCurrency: unitPrice.Currency,
		ParentItemID:  parentItemID,
		Correlation:   correlationID,
	})
}

// RemoveItem deletes the line and every line whose parent it is. One
// CartItemRemoved is recorded for the target plus one per cascaded child.
func (c *Cart) RemoveItem(itemID, correlationID string) error {
	item, ok := c.Items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCartItemNotFound, itemID)
	}
	delete(c.Items, itemID)

	c.removeChildItems(itemID, correlationID)
	c.touch()

	c.record(CartItemRemoved{
		CartID:      c.ID,
		ItemID:      itemID,
		ItemType:    string(item.Type),
		Correlation: correlationID,
	})
	return nil
}

// ChangeQuantity replaces the line's quantity and rescales every child line
// by newQuantity/oldQuantity, truncating toward zero. Children rescale
// silently; only the target line gets an event. A zero quantity delegates to
// RemoveItem, cascade included.
func (c *Cart) ChangeQuantity(itemID string, newQuantity money.Quantity, correlationID string) error {
	item, ok := c.Items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCartItemNotFound, itemID)
	}
	oldQuantity := item.Quantity

	if newQuantity.IsZero() {
		return c.RemoveItem(itemID, correlationID)
	}

	c.Items[itemID] = item.withQuantity(newQuantity)
	c.rescaleChildItems(itemID, oldQuantity, newQuantity)
	c.touch()

	c.record(CartItemQuantityChanged{
		CartID:      c.ID,
		ItemID:      itemID,
		OldQuantity: oldQuantity.Value(),
		NewQuantity: newQuantity.Value(),
		Correlation: correlationID,
	})
	return nil
}

// Clear empties the cart unconditionally and records a single CartCleared,
// regardless of how many lines were dropped.
func (c *Cart) Clear(correlationID string) {
	c.Items = make(map[string]CartItem)
	c.touch()

	c.record(CartCleared{CartID: c.ID, Correlation: correlationID})
}

func (c *Cart) removeChildItems(parentID, correlationID string) {
	for id, item := range c.Items {
		if item.IsChildOf(parentID) {
			delete(c.Items, id)
			c.record(CartItemRemoved{
				CartID:      c.ID,
				ItemID:      item.ID,
				ItemType:    string(item.Type),
				Correlation: correlationID,
			})
		}
	}
}

func (c *Cart) rescaleChildItems(parentID string, oldQuantity, newQuantity money.Quantity) {
	ratio := float64(newQuantity.Value()) / float64(oldQuantity.Value())
	for id, item := range c.Items {
		if item.IsChildOf(parentID) {
			// int() truncates toward zero; repeated small changes can drift
			// child quantities from the intended ratio.
			scaled, err := money.NewQuantity(int(float64(item.Quantity.Value()) * ratio))
			if err != nil {
				continue
			}
			c.Items[id] = item.withQuantity(scaled)
		}
	}
}

// Total sums line totals in the operating currency. A line priced in another
// currency surfaces ErrCurrencyMismatch.
func (c *Cart) Total() (money.Money, error) {
	total := money.Zero(money.DefaultCurrency)
	for _, item := range c.Items {
		sum, err := total.Add(item.TotalPrice())
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

func (c *Cart) ItemsCount() int {
	return len(c.Items)
}

func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity.Value()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Item(itemID string) (CartItem, bool) {
	item, ok := c.Items[itemID]
	return item, ok
}

func (c *Cart) HasItem(itemID string) bool {
	_, ok := c.Items[itemID]
	return ok
}

// ItemsList returns the lines sorted by item id for deterministic output.
func (c *Cart) ItemsList() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// ChildItems returns the direct children of the given line, sorted by id.
func (c *Cart) ChildItems(parentID string) []CartItem {
	var children []CartItem
	for _, item := range c.Items {
		if item.IsChildOf(parentID) {
			children = append(children, item)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children
}

func (c *Cart) record(e DomainEvent) {
	c.pendingEvents = append(c.pendingEvents, e)
}

// PullEvents drains the pending-event buffer.
func (c *Cart) PullEvents() []DomainEvent {
	events := c.pendingEvents
	c.pendingEvents = nil
	return events
}

func (c *Cart) HasPendingEvents() bool {
	return len(c.pendingEvents) > 0
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// ToJSON serialises the full cart state. Deserialisation restores state
// directly; pending events are not part of the record and are never replayed.
func (c *Cart) ToJSON() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

func CartFromJSON(data []byte) (*Cart, error) {
	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart.Items == nil {
		cart.Items = make(map[string]CartItem)
	}
	return &cart, nil
}
