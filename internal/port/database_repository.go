package port

import (
	"context"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

// Store is the persistence collaborator: point reads by id plus a
// transaction scope grouping reads and conditional writes into one
// atomic, isolated unit.
//
// Reads return (nil, nil) when the row is absent; callers decide what
// absence means.
type Store interface {
	// WithinTx runs fn inside one database transaction. A non-nil
	// error from fn aborts the transaction; nothing fn wrote is
	// visible to other transactions before commit.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetListing(ctx context.Context, listingID string) (*domain.Listing, error)
	GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	CreateLot(ctx context.Context, lot *domain.InventoryLot) error
	UpdateLot(ctx context.Context, lot *domain.InventoryLot) error
	ListAvailableLots(ctx context.Context, sellerID string) ([]domain.InventoryLot, error)

	CreateListing(ctx context.Context, listing *domain.Listing) error
}

// Tx is the slice of the store visible inside one transaction.
type Tx interface {
	GetListing(ctx context.Context, listingID string) (*domain.Listing, error)
	GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// DecrementLotStock applies the conditional write
	// `available_qty = available_qty - qty WHERE available_qty >= qty`
	// and reports whether a row matched. False means a concurrent
	// purchase won the race.
	DecrementLotStock(ctx context.Context, lotID string, qty int) (bool, error)

	// IncrementLotStock restores stock for the cancellation rollback.
	IncrementLotStock(ctx context.Context, lotID string, qty int) error

	InsertOrder(ctx context.Context, order *domain.Order) error
	UpdateOrder(ctx context.Context, order *domain.Order) error

	// UpdateListingProjection overwrites the listing's denormalized
	// quantity and status.
	UpdateListingProjection(ctx context.Context, listingID string, quantity int, status domain.ListingStatus) error
}
