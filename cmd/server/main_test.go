package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := connectRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	rdb.Close()
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb, err := connectRedis(context.Background(), addr)
	assert.Nil(t, rdb)
	assert.ErrorContains(t, err, "ping redis")
}
