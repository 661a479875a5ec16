package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ryotak125/parts-market/internal/adapter/storage"
	"github.com/ryotak125/parts-market/internal/core/domain"
)

func newListingEnv(t *testing.T) (*ListingService, *storage.MemoryStore, *memCache) {
	t.Helper()
	store := storage.NewMemoryStore()
	cache := newMemCache()
	return NewListingService(store, cache, testLogger()), store, cache
}

func TestCreateListing_Success(t *testing.T) {
	svc, _, _ := newListingEnv(t)

	listing, err := svc.CreateListing(context.Background(), sellerActor, CreateListingInput{
		PartNumber:   "LM358N",
		Manufacturer: "TI",
		Quantity:     40,
		UnitPriceJPY: 120,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if listing.Status != domain.ListingStatusActive {
		t.Errorf("expected active, got %s", listing.Status)
	}
	if listing.SellerID != "seller-1" {
		t.Errorf("expected seller binding, got %s", listing.SellerID)
	}
}

func TestCreateListing_ZeroQuantityStartsSoldOut(t *testing.T) {
	svc, _, _ := newListingEnv(t)

	listing, err := svc.CreateListing(context.Background(), sellerActor, CreateListingInput{
		PartNumber:   "LM358N",
		Manufacturer: "TI",
		Quantity:     0,
		UnitPriceJPY: 120,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if listing.Status != domain.ListingStatusSoldOut {
		t.Errorf("expected sold_out, got %s", listing.Status)
	}
}

func TestCreateListing_Validation(t *testing.T) {
	svc, _, _ := newListingEnv(t)

	if _, err := svc.CreateListing(context.Background(), sellerActor, CreateListingInput{
		PartNumber: "LM358N", Manufacturer: "TI", Quantity: -1, UnitPriceJPY: 120,
	}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}

	if _, err := svc.CreateListing(context.Background(), sellerActor, CreateListingInput{
		PartNumber: "LM358N", Manufacturer: "TI", Quantity: 1, UnitPriceJPY: -100,
	}); err == nil {
		t.Error("expected validation error for negative price")
	}
}

func TestGetSummary_ReadThroughCache(t *testing.T) {
	svc, _, cache := newListingEnv(t)

	listing, err := svc.CreateListing(context.Background(), sellerActor, CreateListingInput{
		PartNumber:   "LM358N",
		Manufacturer: "TI",
		Quantity:     40,
		UnitPriceJPY: 120,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// First read misses and populates the cache.
	summary, err := svc.GetSummary(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.Quantity != 40 {
		t.Errorf("expected quantity 40, got %d", summary.Quantity)
	}
	if _, ok := cache.summaries[listing.ID]; !ok {
		t.Error("expected summary cached after miss")
	}

	// Second read is served from the cache.
	cached, _ := cache.GetListingSummary(context.Background(), listing.ID)
	if cached == nil {
		t.Fatal("expected cached summary")
	}
	summary, err = svc.GetSummary(context.Background(), listing.ID)
	if err != nil || summary.ID != listing.ID {
		t.Errorf("cached read failed: %v", err)
	}
}

func TestGetListing_NotFound(t *testing.T) {
	svc, _, _ := newListingEnv(t)
	if _, err := svc.GetListing(context.Background(), "missing"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
	if _, err := svc.GetSummary(context.Background(), "missing"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}
