package domain

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the post-commit notification emitted for every order
// mutation.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	BuyerID    string      `json:"buyer_id"`
	SellerID   string      `json:"seller_id"`
	ListingID  string      `json:"listing_id"`
	LotID      string      `json:"lot_id"`
	Quantity   int         `json:"quantity"`
	TotalJPY   int64       `json:"total_jpy"`
	Status     OrderStatus `json:"status"`
	OccurredAt time.Time   `json:"occurred_at"`
}
