package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// ListingService covers the minimal listing surface the order path
// needs: creation and reads. The denormalized quantity/status are
// maintained by OrderService, not here.
type ListingService struct {
	store  port.Store
	cache  port.CacheRepository
	logger *zap.Logger
}

func NewListingService(store port.Store, cache port.CacheRepository, logger *zap.Logger) *ListingService {
	return &ListingService{store: store, cache: cache, logger: logger}
}

type CreateListingInput struct {
	PartNumber   string
	Manufacturer string
	Quantity     int
	UnitPriceJPY int64
}

func (s *ListingService) CreateListing(ctx context.Context, actor domain.Actor, in CreateListingInput) (*domain.Listing, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitPriceJPY < 0 {
		return nil, domain.Validation("INVALID_PRICE", "unit price must not be negative")
	}
	if in.PartNumber == "" || in.Manufacturer == "" {
		return nil, domain.Validation("INVALID_REQUEST", "part number and manufacturer are required")
	}

	status := domain.ListingStatusActive
	if in.Quantity == 0 {
		status = domain.ListingStatusSoldOut
	}
	now := time.Now()
	listing := &domain.Listing{
		ID:           uuid.New().String(),
		SellerID:     actor.UserID,
		PartNumber:   in.PartNumber,
		Manufacturer: in.Manufacturer,
		Quantity:     in.Quantity,
		UnitPriceJPY: in.UnitPriceJPY,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, domain.Internal(err)
	}

	s.logger.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.String("seller_id", listing.SellerID),
		zap.Int64("unit_price_jpy", listing.UnitPriceJPY),
	)
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if listing == nil {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}

// GetSummary is the read-through projection used by buyer-facing
// pages. Cache misses fall back to the store and repopulate.
func (s *ListingService) GetSummary(ctx context.Context, listingID string) (*domain.ListingSummary, error) {
	if s.cache != nil {
		summary, err := s.cache.GetListingSummary(ctx, listingID)
		if err != nil {
			s.logger.Warn("listing cache read failed",
				zap.String("listing_id", listingID), zap.Error(err))
		} else if summary != nil {
			return summary, nil
		}
	}

	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	summary := listing.Summary()
	if s.cache != nil {
		if err := s.cache.SetListingSummary(ctx, summary); err != nil {
			s.logger.Warn("listing cache write failed",
				zap.String("listing_id", listingID), zap.Error(err))
		}
	}
	return &summary, nil
}
