package domain

import (
	"encoding/json"
	"fmt"

	"github.com/dadopl/poc-nocart/internal/pkg/money"
)

type ItemType string

const (
	ItemTypeProduct           ItemType = "product"
	ItemTypeWarranty          ItemType = "warranty"
	ItemTypeAccessory         ItemType = "accessory"
	ItemTypeServiceItem       ItemType = "service_item"
	ItemTypeServiceStandalone ItemType = "service_standalone"
	ItemTypeServiceShipping   ItemType = "service_shipping"
)

func (t ItemType) IsProduct() bool {
	return t == ItemTypeProduct
}

// IsChildItem reports whether items of this type are normally bound to a
// parent product line.
func (t ItemType) IsChildItem() bool {
	return t == ItemTypeWarranty || t == ItemTypeAccessory || t == ItemTypeServiceItem
}

// CartItem is one line of the cart. ParentItemID is empty for top-level
// lines; a dangling parent reference is tolerated and the item then behaves
// as if its parent were already removed.
type CartItem struct {
	ID           string
	OfferID      int64
	Type         ItemType
	Name         string
	UnitPrice    money.Money
	Quantity     money.Quantity
	ParentItemID string
}

func (i CartItem) TotalPrice() money.Money {
	return i.UnitPrice.Multiply(int64(i.Quantity.Value()))
}

func (i CartItem) IsChildOf(parentID string) bool {
	return i.ParentItemID != "" && i.ParentItemID == parentID
}

func (i CartItem) HasParent() bool {
	return i.ParentItemID != ""
}

func (i CartItem) withQuantity(q money.Quantity) CartItem {
	i.Quantity = q
	return i
}

type itemRecord struct {
	ID           string      `json:"id"`
	OfferID      int64       `json:"offer_id"`
	Type         string      `json:"type"`
	Name         string      `json:"name"`
	UnitPrice    money.Money `json:"unit_price"`
	Quantity     int         `json:"quantity"`
	ParentItemID string      `json:"parent_item_id,omitempty"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemRecord{
		ID:           i.ID,
		OfferID:      i.OfferID,
		Type:         string(i.Type),
		Name:         i.Name,
		UnitPrice:    i.UnitPrice,
		Quantity:     i.Quantity.Value(),
		ParentItemID: i.ParentItemID,
	})
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var rec itemRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	qty, err := money.NewQuantity(rec.Quantity)
	if err != nil {
		return fmt.Errorf("item %s: %w", rec.ID, err)
	}
	*i = CartItem{
		ID:           rec.ID,
		OfferID:      rec.OfferID,
		Type:         ItemType(rec.Type),
		Name:         rec.Name,
		UnitPrice:    rec.UnitPrice,
		Quantity:     qty,
		ParentItemID: rec.ParentItemID,
	}
	return nil
}
