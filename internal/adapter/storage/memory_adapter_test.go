package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

func memLot(id string, qty int) *domain.InventoryLot {
	now := time.Now()
	return &domain.InventoryLot{
		ID: id, SellerID: "seller-1", PartNumber: "LM358N", Manufacturer: "TI",
		Source: domain.LotSourceAuthorized, Condition: domain.LotConditionNew,
		AvailableQty: qty, CreatedAt: now, UpdatedAt: now,
	}
}

func TestMemoryStore_TxCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.CreateLot(ctx, memLot("lot-1", 10)); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	err := store.WithinTx(ctx, func(tx port.Tx) error {
		ok, err := tx.DecrementLotStock(ctx, "lot-1", 4)
		if err != nil || !ok {
			t.Fatalf("decrement: ok=%v err=%v", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	lot, _ := store.GetLot(ctx, "lot-1")
	if lot.AvailableQty != 6 {
		t.Errorf("expected 6, got %d", lot.AvailableQty)
	}
}

func TestMemoryStore_TxAbortRestoresSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.CreateLot(ctx, memLot("lot-1", 10)); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx port.Tx) error {
		if _, err := tx.DecrementLotStock(ctx, "lot-1", 4); err != nil {
			return err
		}
		now := time.Now()
		if err := tx.InsertOrder(ctx, &domain.Order{
			ID: "order-1", BuyerID: "b", SellerID: "s", ListingID: "l", LotID: "lot-1",
			Quantity: 4, UnitPriceJPY: 1, TotalJPY: 4,
			Status: domain.OrderStatusCreated, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	lot, _ := store.GetLot(ctx, "lot-1")
	if lot.AvailableQty != 10 {
		t.Errorf("abort must restore stock, got %d", lot.AvailableQty)
	}
	order, _ := store.GetOrder(ctx, "order-1")
	if order != nil {
		t.Error("abort must discard the inserted order")
	}
}

func TestMemoryStore_ConditionalDecrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.CreateLot(ctx, memLot("lot-1", 3)); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	err := store.WithinTx(ctx, func(tx port.Tx) error {
		ok, err := tx.DecrementLotStock(ctx, "lot-1", 5)
		if err != nil {
			return err
		}
		if ok {
			t.Error("decrement beyond stock must not match")
		}
		ok, err = tx.DecrementLotStock(ctx, "missing", 1)
		if err != nil {
			return err
		}
		if ok {
			t.Error("decrement of missing lot must not match")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	lot, _ := store.GetLot(ctx, "lot-1")
	if lot.AvailableQty != 3 {
		t.Errorf("expected stock unchanged, got %d", lot.AvailableQty)
	}
}
