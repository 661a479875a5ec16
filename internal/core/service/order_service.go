package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// OrderService executes one purchase as a single unit of work across
// listing, lot and order. Nothing outside the transaction boundary is
// touched before commit.
type OrderService struct {
	store  port.Store
	cache  port.CacheRepository
	events port.EventPublisher
	logger *zap.Logger
}

func NewOrderService(store port.Store, cache port.CacheRepository, events port.EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

type PlaceOrderInput struct {
	BuyerID   string
	ListingID string
	LotID     string
	Quantity  int
	// RequestID is an optional client token for duplicate suppression.
	RequestID string
}

type PlaceOrderResult struct {
	Order   *domain.Order
	Listing domain.ListingSummary
}

func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if in.Quantity < 1 {
		return nil, domain.Validation("INVALID_QUANTITY", "quantity must be at least 1")
	}
	if in.BuyerID == "" || in.ListingID == "" || in.LotID == "" {
		return nil, domain.Validation("INVALID_REQUEST", "missing required fields")
	}

	if in.RequestID != "" && s.cache != nil {
		key := fmt.Sprintf("order:%s:%s", in.BuyerID, in.RequestID)
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return nil, domain.Internal(fmt.Errorf("idempotency check failed: %w", err))
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	var result *PlaceOrderResult
	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		listing, err := tx.GetListing(ctx, in.ListingID)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil {
			return domain.ErrListingNotFound
		}
		if listing.Status != domain.ListingStatusActive {
			return domain.ErrListingNotActive
		}

		lot, err := tx.GetLot(ctx, in.LotID)
		if err != nil {
			return fmt.Errorf("load lot: %w", err)
		}
		if lot == nil {
			return domain.ErrLotNotFound
		}
		if lot.AvailableQty < in.Quantity {
			return domain.ErrInsufficientStock
		}

		// Conditional write re-checks sufficiency at write time. This,
		// not the read above, is what prevents overselling under
		// concurrent purchases of the same lot.
		ok, err := tx.DecrementLotStock(ctx, in.LotID, in.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			return domain.ErrStockUpdateFailed
		}

		now := time.Now()
		order := &domain.Order{
			ID:           uuid.New().String(),
			BuyerID:      in.BuyerID,
			SellerID:     listing.SellerID,
			ListingID:    listing.ID,
			LotID:        lot.ID,
			Quantity:     in.Quantity,
			UnitPriceJPY: listing.UnitPriceJPY,
			TotalJPY:     listing.UnitPriceJPY * int64(in.Quantity),
			Status:       domain.OrderStatusCreated,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		remaining := listing.Quantity - in.Quantity
		status := listing.Status
		if remaining <= 0 {
			remaining = 0
			status = domain.ListingStatusSoldOut
		}
		if err := tx.UpdateListingProjection(ctx, listing.ID, remaining, status); err != nil {
			return fmt.Errorf("update listing projection: %w", err)
		}

		result = &PlaceOrderResult{
			Order: order,
			Listing: domain.ListingSummary{
				ID:         listing.ID,
				PartNumber: listing.PartNumber,
				Quantity:   remaining,
				Status:     status,
			},
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.afterCommit(ctx, in.ListingID, domain.OrderEvent{
		Type:       domain.EventOrderCreated,
		OrderID:    result.Order.ID,
		BuyerID:    result.Order.BuyerID,
		SellerID:   result.Order.SellerID,
		ListingID:  result.Order.ListingID,
		LotID:      result.Order.LotID,
		Quantity:   result.Order.Quantity,
		TotalJPY:   result.Order.TotalJPY,
		Status:     result.Order.Status,
		OccurredAt: result.Order.CreatedAt,
	})

	s.logger.Info("order placed",
		zap.String("order_id", result.Order.ID),
		zap.String("listing_id", result.Order.ListingID),
		zap.String("lot_id", result.Order.LotID),
		zap.Int("quantity", result.Order.Quantity),
		zap.Int64("total_jpy", result.Order.TotalJPY),
	)
	return result, nil
}

// afterCommit runs the best-effort side effects: cache invalidation
// and event publication. Failures here never fail the order.
func (s *OrderService) afterCommit(ctx context.Context, listingID string, ev domain.OrderEvent) {
	if s.cache != nil {
		if err := s.cache.InvalidateListing(ctx, listingID); err != nil {
			s.logger.Warn("listing cache invalidation failed",
				zap.String("listing_id", listingID), zap.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, ev); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("order_id", ev.OrderID), zap.Error(err))
		}
	}
}

// classify maps a transaction failure to exactly one externally
// visible error. Business failures pass through; anything else is an
// internal, retryable error because the abort left no partial state.
func classify(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return domain.Internal(err)
}
