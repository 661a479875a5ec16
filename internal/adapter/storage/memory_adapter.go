package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// MemoryStore implements port.Store on in-process maps. A single lock
// serializes transactions, and a pre-transaction snapshot is restored
// on abort, so the all-or-nothing contract holds without a database.
// Used for tests and local development.
type MemoryStore struct {
	mu       sync.Mutex
	listings map[string]domain.Listing
	lots     map[string]domain.InventoryLot
	orders   map[string]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[string]domain.Listing),
		lots:     make(map[string]domain.InventoryLot),
		orders:   make(map[string]domain.Order),
	}
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapListings := maps.Clone(m.listings)
	snapLots := maps.Clone(m.lots)
	snapOrders := maps.Clone(m.orders)

	if err := fn(&memoryTx{store: m}); err != nil {
		m.listings = snapListings
		m.lots = snapLots
		m.orders = snapOrders
		return err
	}
	return nil
}

func (m *MemoryStore) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getListing(listingID), nil
}

func (m *MemoryStore) GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLot(lotID), nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrder(orderID), nil
}

func (m *MemoryStore) CreateLot(ctx context.Context, lot *domain.InventoryLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lots[lot.ID]; exists {
		return fmt.Errorf("lot %s already exists", lot.ID)
	}
	m.lots[lot.ID] = *lot
	return nil
}

func (m *MemoryStore) UpdateLot(ctx context.Context, lot *domain.InventoryLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lots[lot.ID]; !exists {
		return fmt.Errorf("lot %s not found", lot.ID)
	}
	m.lots[lot.ID] = *lot
	return nil
}

func (m *MemoryStore) ListAvailableLots(ctx context.Context, sellerID string) ([]domain.InventoryLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lots []domain.InventoryLot
	for _, lot := range m.lots {
		if lot.SellerID == sellerID && lot.AvailableQty > 0 {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (m *MemoryStore) CreateListing(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.listings[listing.ID]; exists {
		return fmt.Errorf("listing %s already exists", listing.ID)
	}
	m.listings[listing.ID] = *listing
	return nil
}

// lock-free internal reads, callers hold m.mu.

func (m *MemoryStore) getListing(id string) *domain.Listing {
	if l, ok := m.listings[id]; ok {
		return &l
	}
	return nil
}

func (m *MemoryStore) getLot(id string) *domain.InventoryLot {
	if l, ok := m.lots[id]; ok {
		return &l
	}
	return nil
}

func (m *MemoryStore) getOrder(id string) *domain.Order {
	if o, ok := m.orders[id]; ok {
		return &o
	}
	return nil
}

type memoryTx struct {
	store *MemoryStore
}

func (t *memoryTx) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	return t.store.getListing(listingID), nil
}

func (t *memoryTx) GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error) {
	return t.store.getLot(lotID), nil
}

func (t *memoryTx) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return t.store.getOrder(orderID), nil
}

func (t *memoryTx) DecrementLotStock(ctx context.Context, lotID string, qty int) (bool, error) {
	lot, ok := t.store.lots[lotID]
	if !ok || lot.AvailableQty < qty {
		return false, nil
	}
	lot.AvailableQty -= qty
	t.store.lots[lotID] = lot
	return true, nil
}

func (t *memoryTx) IncrementLotStock(ctx context.Context, lotID string, qty int) error {
	lot, ok := t.store.lots[lotID]
	if !ok {
		return fmt.Errorf("lot %s not found", lotID)
	}
	lot.AvailableQty += qty
	t.store.lots[lotID] = lot
	return nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if _, exists := t.store.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	t.store.orders[order.ID] = *order
	return nil
}

func (t *memoryTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if _, exists := t.store.orders[order.ID]; !exists {
		return fmt.Errorf("order %s not found", order.ID)
	}
	t.store.orders[order.ID] = *order
	return nil
}

func (t *memoryTx) UpdateListingProjection(ctx context.Context, listingID string, quantity int, status domain.ListingStatus) error {
	listing, ok := t.store.listings[listingID]
	if !ok {
		return fmt.Errorf("listing %s not found", listingID)
	}
	listing.Quantity = quantity
	listing.Status = status
	t.store.listings[listingID] = listing
	return nil
}
