package port

import (
	"context"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// GetListingSummary returns the cached projection, or (nil, nil) on miss.
	GetListingSummary(ctx context.Context, listingID string) (*domain.ListingSummary, error)

	SetListingSummary(ctx context.Context, summary domain.ListingSummary) error

	// InvalidateListing drops the cached projection after a write.
	InvalidateListing(ctx context.Context, listingID string) error
}
