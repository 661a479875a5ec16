package domain

import "time"

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusSoldOut ListingStatus = "sold_out"
)

// Listing is the buyer-facing offer. Quantity and Status are a
// denormalized display projection; the associated lot holds the
// stock truth.
type Listing struct {
	ID           string        `db:"id"`
	SellerID     string        `db:"seller_id"`
	PartNumber   string        `db:"part_number"`
	Manufacturer string        `db:"manufacturer"`
	Quantity     int           `db:"quantity"`
	UnitPriceJPY int64         `db:"unit_price_jpy"`
	Status       ListingStatus `db:"status"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// ListingSummary is the projection returned to buyers after a purchase.
type ListingSummary struct {
	ID         string        `json:"id"`
	PartNumber string        `json:"part_number"`
	Quantity   int           `json:"quantity"`
	Status     ListingStatus `json:"status"`
}

func (l *Listing) Summary() ListingSummary {
	return ListingSummary{
		ID:         l.ID,
		PartNumber: l.PartNumber,
		Quantity:   l.Quantity,
		Status:     l.Status,
	}
}
