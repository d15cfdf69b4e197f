package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stockmap/internal/core/domain"
)

func getRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func sampleInventory() domain.Inventory {
	return domain.Inventory{Streets: []domain.Street{
		{Name: "A", Lots: []domain.Lot{
			{Name: "1", Product: "Widget", Quantity: 5, Sold: 2, Depreciated: -1},
			{Name: "2"},
		}},
		{Name: "B", Lots: []domain.Lot{}},
	}}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	_, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	inv := sampleInventory()
	require.NoError(t, adapter.SaveInventory(ctx, "s1", inv, time.Hour))

	loaded, err := adapter.LoadInventory(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, inv, *loaded)
}

func TestSave_SetsTTL(t *testing.T) {
	mr, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	ttl := 7 * 24 * time.Hour
	require.NoError(t, adapter.SaveInventory(ctx, "s1", sampleInventory(), ttl))

	assert.Equal(t, ttl, mr.TTL("inventory:s1"))

	mr.FastForward(ttl + time.Second)
	loaded, err := adapter.LoadInventory(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "snapshot should expire")
}

func TestLoad_Missing(t *testing.T) {
	_, client := getRedisClient(t)

	loaded, err := NewRedisAdapter(client).LoadInventory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestLoad_Corrupt(t *testing.T) {
	mr, client := getRedisClient(t)
	require.NoError(t, mr.Set("inventory:s1", "{not json"))

	_, err := NewRedisAdapter(client).LoadInventory(context.Background(), "s1")
	assert.True(t, errors.Is(err, ErrCorruptSnapshot), "got %v", err)
}

func TestLoad_RedisDown(t *testing.T) {
	mr, client := getRedisClient(t)
	mr.Close()

	_, err := NewRedisAdapter(client).LoadInventory(context.Background(), "s1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCorruptSnapshot))
}

func TestSnapshotFormat(t *testing.T) {
	raw, err := EncodeSnapshot(domain.Inventory{Streets: []domain.Street{
		{Name: "A", Lots: []domain.Lot{{Name: "1", Product: "Widget", Quantity: 2}}},
	}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"name":"A","lots":[{"name":"1","product":"Widget","quantity":2,"sold":0,"depreciated":0}]}]`,
		string(raw))

	empty, err := EncodeSnapshot(domain.Inventory{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestDecodeSnapshot_NullLots(t *testing.T) {
	inv, err := DecodeSnapshot([]byte(`[{"name":"A","lots":null}]`))
	require.NoError(t, err)
	assert.NotNil(t, inv.Streets[0].Lots)

	// lots can still be appended after a lenient decode
	require.NoError(t, inv.AddLot("A", "1"))
}

func TestTouch(t *testing.T) {
	mr, client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	ok, err := adapter.Touch(ctx, "s1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "nothing to touch yet")

	require.NoError(t, adapter.SaveInventory(ctx, "s1", sampleInventory(), time.Hour))
	mr.FastForward(50 * time.Minute)

	ok, err = adapter.Touch(ctx, "s1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("inventory:s1"))
}
