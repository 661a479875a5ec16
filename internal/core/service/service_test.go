package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/internal/adapter/storage"
	"github.com/ryotak125/parts-market/internal/core/domain"
)

// captureEvents records published events for assertions.
type captureEvents struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (c *captureEvents) Publish(ctx context.Context, event domain.OrderEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEvents) Close() error { return nil }

func (c *captureEvents) all() []domain.OrderEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.OrderEvent(nil), c.events...)
}

// memCache is an in-process stand-in for the Redis adapter.
type memCache struct {
	mu            sync.Mutex
	keys          map[string]bool
	summaries     map[string]domain.ListingSummary
	invalidations int
}

func newMemCache() *memCache {
	return &memCache{
		keys:      make(map[string]bool),
		summaries: make(map[string]domain.ListingSummary),
	}
}

func (m *memCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memCache) GetListingSummary(ctx context.Context, listingID string) (*domain.ListingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.summaries[listingID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *memCache) SetListingSummary(ctx context.Context, summary domain.ListingSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summary.ID] = summary
	return nil
}

func (m *memCache) InvalidateListing(ctx context.Context, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.summaries, listingID)
	m.invalidations++
	return nil
}

func seedListing(t *testing.T, store *storage.MemoryStore, id, sellerID string, qty int, priceJPY int64, status domain.ListingStatus) {
	t.Helper()
	now := time.Now()
	err := store.CreateListing(context.Background(), &domain.Listing{
		ID:           id,
		SellerID:     sellerID,
		PartNumber:   "LM358N",
		Manufacturer: "TI",
		Quantity:     qty,
		UnitPriceJPY: priceJPY,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed listing: %v", err)
	}
}

func seedLot(t *testing.T, store *storage.MemoryStore, id, sellerID string, qty int) {
	t.Helper()
	now := time.Now()
	err := store.CreateLot(context.Background(), &domain.InventoryLot{
		ID:           id,
		SellerID:     sellerID,
		PartNumber:   "LM358N",
		Manufacturer: "TI",
		Source:       domain.LotSourceAuthorized,
		Condition:    domain.LotConditionNew,
		AvailableQty: qty,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed lot: %v", err)
	}
}

func lotQty(t *testing.T, store *storage.MemoryStore, id string) int {
	t.Helper()
	lot, err := store.GetLot(context.Background(), id)
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	if lot == nil {
		t.Fatalf("lot %s not found", id)
	}
	return lot.AvailableQty
}

func testLogger() *zap.Logger { return zap.NewNop() }
