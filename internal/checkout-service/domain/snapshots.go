package domain

// Sub-snapshots of the checkout projection. Each map is keyed by the
// upstream entity id and every entry is independently upserted or removed;
// totals are always recomputed over the whole map, never maintained as a
// running sum.

type CartSnapshotItem struct {
	ItemID        string `json:"item_id"`
	ItemType      string `json:"item_type"`
	OfferID       int64  `json:"offer_id"`
	Quantity      int    `json:"quantity"`
	PriceAmount   int64  `json:"price_amount"`
	PriceCurrency string `json:"price_currency"`
	ParentItemID  string `json:"parent_item_id,omitempty"`
}

type CartSnapshot struct {
	Items      map[string]CartSnapshotItem `json:"items"`
	TotalCents int64                       `json:"total_cents"`
	Currency   string                      `json:"currency"`
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type ShippingSnapshot struct {
	MethodID     string           `json:"method_id,omitempty"`
	MethodName   string           `json:"method_name,omitempty"`
	Cost         int64            `json:"cost"`
	Currency     string           `json:"currency"`
	Address      *ShippingAddress `json:"address,omitempty"`
	DeliveryDate string           `json:"delivery_date,omitempty"`
	IsExpress    bool             `json:"is_express"`
	ExpressFee   int64            `json:"express_fee"`
}

type AppliedPromotion struct {
	PromotionID      string `json:"promotion_id"`
	PromotionName    string `json:"promotion_name"`
	DiscountAmount   int64  `json:"discount_amount"`
	DiscountCurrency string `json:"discount_currency"`
}

type AppliedPromoCode struct {
	Code             string `json:"code"`
	DiscountAmount   int64  `json:"discount_amount"`
	DiscountCurrency string `json:"discount_currency"`
}

type PromotionSnapshot struct {
	Applied       map[string]AppliedPromotion `json:"applied"`
	Codes         map[string]AppliedPromoCode `json:"codes"`
	TotalDiscount int64                       `json:"total_discount"`
	Currency      string                      `json:"currency"`
}

type SelectedService struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
}

type ServicesSnapshot struct {
	Selected  map[string]SelectedService `json:"selected"`
	TotalCost int64                      `json:"total_cost"`
	Currency  string                     `json:"currency"`
}

type PaymentSnapshot struct {
	MethodID      string `json:"method_id,omitempty"`
	MethodName    string `json:"method_name,omitempty"`
	Status        string `json:"status,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	OrderID       string `json:"order_id,omitempty"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	FailureReason string `json:"failure_reason,omitempty"`
}
