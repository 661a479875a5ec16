package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// LifecycleService owns post-creation order transitions. Cancellation
// is the compensating path: it restores lot stock exactly once, in the
// same transaction that flips the status.
type LifecycleService struct {
	store  port.Store
	events port.EventPublisher
	logger *zap.Logger
}

func NewLifecycleService(store port.Store, events port.EventPublisher, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		store:  store,
		events: events,
		logger: logger,
	}
}

func validOrderStatus(s domain.OrderStatus) bool {
	switch s {
	case domain.OrderStatusCreated, domain.OrderStatusPaid,
		domain.OrderStatusCanceled, domain.OrderStatusFulfilled:
		return true
	}
	return false
}

// UpdateStatus transitions an order. Re-canceling a canceled order is
// a success no-op: stock is rolled back exactly once.
//
// Cancellation deliberately does not restore the listing projection;
// a sold-out listing stays sold out even when the canceled stock
// returns to the lot.
func (s *LifecycleService) UpdateStatus(ctx context.Context, orderID string, actor domain.Actor, next domain.OrderStatus) (*domain.Order, error) {
	if !validOrderStatus(next) {
		return nil, domain.ErrInvalidStatus
	}

	var updated *domain.Order
	var noop bool
	err := s.store.WithinTx(ctx, func(tx port.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if !canManageOrder(actor, order) {
			return domain.ErrForbidden
		}

		if next == domain.OrderStatusCanceled && order.Status == domain.OrderStatusCanceled {
			updated = order
			noop = true
			return nil
		}
		if !order.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}

		now := time.Now()
		order.Status = next
		order.UpdatedAt = now
		switch next {
		case domain.OrderStatusPaid:
			order.PaidAt = &now
		case domain.OrderStatusFulfilled:
			order.FulfilledAt = &now
		case domain.OrderStatusCanceled:
			order.CanceledAt = &now
			if err := tx.IncrementLotStock(ctx, order.LotID, order.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		if err := tx.UpdateOrder(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if !noop && s.events != nil {
		ev := domain.OrderEvent{
			Type:       domain.EventOrderStatusChanged,
			OrderID:    updated.ID,
			BuyerID:    updated.BuyerID,
			SellerID:   updated.SellerID,
			ListingID:  updated.ListingID,
			LotID:      updated.LotID,
			Quantity:   updated.Quantity,
			TotalJPY:   updated.TotalJPY,
			Status:     updated.Status,
			OccurredAt: updated.UpdatedAt,
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("order_id", updated.ID), zap.Error(err))
		}
	}

	if !noop {
		s.logger.Info("order status updated",
			zap.String("order_id", updated.ID),
			zap.String("status", string(updated.Status)),
		)
	}
	return updated, nil
}

// GetOrder returns an order to its buyer, its seller, or an admin.
func (s *LifecycleService) GetOrder(ctx context.Context, orderID string, actor domain.Actor) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !canManageOrder(actor, order) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}
