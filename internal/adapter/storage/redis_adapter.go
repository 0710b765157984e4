package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/multiship/internal/core/domain"
)

const (
	methodsKeyPrefix = "shipping_methods:"
	methodsTTL       = 5 * time.Minute
)

// RedisAdapter caches applicable-shipping-methods results in one hash per
// basket, keyed by shipment id, so a single delete invalidates the whole
// basket after a shipment mutation.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID) (*domain.ShippingMethodResult, error) {
	data, err := r.client.HGet(ctx, methodsKeyPrefix+basketID, string(shipmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result domain.ShippingMethodResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached shipping methods: %w", err)
	}
	return &result, nil
}

func (r *RedisAdapter) SetShippingMethods(ctx context.Context, basketID string, shipmentID domain.ShipmentID, result *domain.ShippingMethodResult) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode shipping methods: %w", err)
	}

	key := methodsKeyPrefix + basketID
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, string(shipmentID), data)
	pipe.Expire(ctx, key, methodsTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisAdapter) InvalidateBasket(ctx context.Context, basketID string) error {
	return r.client.Del(ctx, methodsKeyPrefix+basketID).Err()
}
