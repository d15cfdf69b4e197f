package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/stockmap/internal/core/domain"
)

const inventoryKeyPrefix = "inventory:"

var ErrCorruptSnapshot = errors.New("corrupt inventory snapshot")

// RedisAdapter stores one JSON snapshot per session with an expiry.
// The snapshot is the array of streets, e.g.
// [{"name":"A","lots":[{"name":"1","product":"","quantity":0,"sold":0,"depreciated":0}]}]
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) LoadInventory(ctx context.Context, sessionID string) (*domain.Inventory, error) {
	raw, err := r.client.Get(ctx, inventoryKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get snapshot")
	}

	inv, err := DecodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *RedisAdapter) SaveInventory(ctx context.Context, sessionID string, inv domain.Inventory, ttl time.Duration) error {
	raw, err := EncodeSnapshot(inv)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, inventoryKeyPrefix+sessionID, raw, ttl).Err(); err != nil {
		return errors.Wrap(err, "set snapshot")
	}
	return nil
}

func (r *RedisAdapter) Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.Expire(ctx, inventoryKeyPrefix+sessionID, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "expire snapshot")
	}
	return ok, nil
}

func EncodeSnapshot(inv domain.Inventory) ([]byte, error) {
	streets := inv.Streets
	if streets == nil {
		streets = []domain.Street{}
	}
	raw, err := json.Marshal(streets)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return raw, nil
}

func DecodeSnapshot(raw []byte) (domain.Inventory, error) {
	var streets []domain.Street
	if err := json.Unmarshal(raw, &streets); err != nil {
		return domain.Inventory{}, errors.Wrapf(ErrCorruptSnapshot, "decode: %v", err)
	}
	for i := range streets {
		if streets[i].Lots == nil {
			streets[i].Lots = []domain.Lot{}
		}
	}
	return domain.Inventory{Streets: streets}, nil
}
