package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryCache is a fast-path dedupe check in front of the delivery log
// store. It is an optimization only: the log store stays the source of truth,
// and cache misses or errors fall through to the store check.
type DeliveryCache interface {
	MarkDelivered(ctx context.Context, campaignID, recipientID string) error
	IsDelivered(ctx context.Context, campaignID, recipientID string) (bool, error)
}

type redisDeliveryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryCache(client *redis.Client, ttl time.Duration) DeliveryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisDeliveryCache{client: client, ttl: ttl}
}

func deliveredKey(campaignID, recipientID string) string {
	return "delivered:" + campaignID + ":" + recipientID
}

func (r *redisDeliveryCache) MarkDelivered(ctx context.Context, campaignID, recipientID string) error {
	return r.client.Set(ctx, deliveredKey(campaignID, recipientID), "1", r.ttl).Err()
}

func (r *redisDeliveryCache) IsDelivered(ctx context.Context, campaignID, recipientID string) (bool, error) {
	n, err := r.client.Exists(ctx, deliveredKey(campaignID, recipientID)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
