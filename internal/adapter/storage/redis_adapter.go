package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

const (
	listingKeyPrefix  = "listing:"
	idempotencyKeyTTL = 24 * time.Hour
	listingKeyTTL     = 5 * time.Minute
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisAdapter) GetListingSummary(ctx context.Context, listingID string) (*domain.ListingSummary, error) {
	raw, err := r.client.Get(ctx, listingKeyPrefix+listingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary domain.ListingSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode cached listing: %w", err)
	}
	return &summary, nil
}

func (r *RedisAdapter) SetListingSummary(ctx context.Context, summary domain.ListingSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.client.Set(ctx, listingKeyPrefix+summary.ID, raw, listingKeyTTL).Err()
}

func (r *RedisAdapter) InvalidateListing(ctx context.Context, listingID string) error {
	return r.client.Del(ctx, listingKeyPrefix+listingID).Err()
}
