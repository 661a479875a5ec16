package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// LotService is the seller-facing surface over inventory lots. The
// transactional decrement path in OrderService never goes through
// here; UpdateLot overwrites are for seller corrections only.
type LotService struct {
	store  port.Store
	logger *zap.Logger
}

func NewLotService(store port.Store, logger *zap.Logger) *LotService {
	return &LotService{store: store, logger: logger}
}

type CreateLotInput struct {
	PartNumber   string
	Manufacturer string
	DateCode     string
	Source       domain.LotSource
	Condition    domain.LotCondition
	AvailableQty int
	Location     string
}

func (s *LotService) CreateLot(ctx context.Context, actor domain.Actor, in CreateLotInput) (*domain.InventoryLot, error) {
	if in.AvailableQty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.PartNumber == "" || in.Manufacturer == "" {
		return nil, domain.Validation("INVALID_REQUEST", "part number and manufacturer are required")
	}
	switch in.Source {
	case domain.LotSourceAuthorized, domain.LotSourceOpenMarket:
	default:
		return nil, domain.Validation("INVALID_SOURCE", "source must be authorized or open_market")
	}
	switch in.Condition {
	case domain.LotConditionNew, domain.LotConditionUsed:
	default:
		return nil, domain.Validation("INVALID_CONDITION", "condition must be new or used")
	}

	now := time.Now()
	lot := &domain.InventoryLot{
		ID:           uuid.New().String(),
		SellerID:     actor.UserID,
		PartNumber:   in.PartNumber,
		Manufacturer: in.Manufacturer,
		DateCode:     in.DateCode,
		Source:       in.Source,
		Condition:    in.Condition,
		AvailableQty: in.AvailableQty,
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateLot(ctx, lot); err != nil {
		return nil, domain.Internal(err)
	}

	s.logger.Info("lot created",
		zap.String("lot_id", lot.ID),
		zap.String("seller_id", lot.SellerID),
		zap.String("part_number", lot.PartNumber),
		zap.Int("available_qty", lot.AvailableQty),
	)
	return lot, nil
}

// UpdateLot applies a partial overwrite for the owning seller or an
// admin. A negative quantity in the patch is rejected before any write.
func (s *LotService) UpdateLot(ctx context.Context, lotID string, actor domain.Actor, patch domain.LotPatch) (*domain.InventoryLot, error) {
	lot, err := s.store.GetLot(ctx, lotID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	if !canManageLot(actor, lot) {
		return nil, domain.ErrForbidden
	}
	if patch.AvailableQty != nil && *patch.AvailableQty < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if patch.PartNumber != nil {
		lot.PartNumber = *patch.PartNumber
	}
	if patch.Manufacturer != nil {
		lot.Manufacturer = *patch.Manufacturer
	}
	if patch.DateCode != nil {
		lot.DateCode = *patch.DateCode
	}
	if patch.Source != nil {
		lot.Source = *patch.Source
	}
	if patch.Condition != nil {
		lot.Condition = *patch.Condition
	}
	if patch.AvailableQty != nil {
		lot.AvailableQty = *patch.AvailableQty
	}
	if patch.Location != nil {
		lot.Location = *patch.Location
	}
	lot.UpdatedAt = time.Now()

	if err := s.store.UpdateLot(ctx, lot); err != nil {
		return nil, domain.Internal(err)
	}
	return lot, nil
}

func (s *LotService) GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error) {
	lot, err := s.store.GetLot(ctx, lotID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	return lot, nil
}

// ListAvailableLots returns the seller's discoverable lots: only those
// with stock remaining.
func (s *LotService) ListAvailableLots(ctx context.Context, sellerID string) ([]domain.InventoryLot, error) {
	lots, err := s.store.ListAvailableLots(ctx, sellerID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return lots, nil
}
