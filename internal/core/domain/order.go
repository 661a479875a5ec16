package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// Order records one purchase. UnitPriceJPY and TotalJPY are captured
// at creation time and never recomputed from the listing.
type Order struct {
	ID           string      `db:"id"`
	BuyerID      string      `db:"buyer_id"`
	SellerID     string      `db:"seller_id"`
	ListingID    string      `db:"listing_id"`
	LotID        string      `db:"lot_id"`
	Quantity     int         `db:"quantity"`
	UnitPriceJPY int64       `db:"unit_price_jpy"`
	TotalJPY     int64       `db:"total_jpy"`
	Status       OrderStatus `db:"status"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	PaidAt       *time.Time  `db:"paid_at"`
	CanceledAt   *time.Time  `db:"canceled_at"`
	FulfilledAt  *time.Time  `db:"fulfilled_at"`
}

// CanTransitionTo reports whether the status state machine permits
// moving from the order's current status to next. Fulfilled and
// canceled are terminal.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	switch o.Status {
	case OrderStatusCreated:
		return next == OrderStatusPaid || next == OrderStatusCanceled
	case OrderStatusPaid:
		return next == OrderStatusFulfilled || next == OrderStatusCanceled
	default:
		return false
	}
}
