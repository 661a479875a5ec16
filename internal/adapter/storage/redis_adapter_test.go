package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestSetIdempotency_Success(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "test-idem-key")

	ok, err := adapter.SetIdempotency(ctx, "test-idem-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first call to succeed")
	}

	ok, err = adapter.SetIdempotency(ctx, "test-idem-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second call to fail")
	}
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "test-idem-concurrent")

	var winCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "test-idem-concurrent")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				winCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if winCount.Load() != 1 {
		t.Errorf("expected exactly one winner, got %d", winCount.Load())
	}
}

func TestListingSummaryCache_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "listing:test-listing")

	// Miss before write.
	summary, err := adapter.GetListingSummary(ctx, "test-listing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != nil {
		t.Fatalf("expected miss, got %+v", summary)
	}

	err = adapter.SetListingSummary(ctx, domain.ListingSummary{
		ID:         "test-listing",
		PartNumber: "LM358N",
		Quantity:   12,
		Status:     domain.ListingStatusActive,
	})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}

	summary, err = adapter.GetListingSummary(ctx, "test-listing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if summary == nil || summary.Quantity != 12 || summary.Status != domain.ListingStatusActive {
		t.Errorf("unexpected summary: %+v", summary)
	}

	if err := adapter.InvalidateListing(ctx, "test-listing"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	summary, err = adapter.GetListingSummary(ctx, "test-listing")
	if err != nil {
		t.Fatalf("get after invalidate failed: %v", err)
	}
	if summary != nil {
		t.Errorf("expected miss after invalidation, got %+v", summary)
	}
}
