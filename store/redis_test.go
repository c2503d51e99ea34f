package store_test

import (
	"context"
	"math"
	"testing"
	"time"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"git.fiblab.net/sim/catchment/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *store.RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := store.NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, store.NewRedisCache(client, time.Minute)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestCache(t)

	got, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	result := &algo.IsochroneResult{
		StartNode:      4,
		MaxCost:        300,
		TravelCosts:    map[algo.NodeID]float64{4: 0, 1: 72, 5: 72},
		ReachableNodes: 3,
	}
	require.NoError(t, cache.Set(ctx, "car:v1:4:300", result))
	assert.True(t, mr.Exists(store.REDIS_KEY_PREFIX+"car:v1:4:300"))
	assert.Equal(t, time.Minute, mr.TTL(store.REDIS_KEY_PREFIX+"car:v1:4:300"))

	got, err = cache.Get(ctx, "car:v1:4:300")
	require.NoError(t, err)
	assert.Equal(t, result, got)

	mr.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx, "car:v1:4:300")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 无上界阈值
	unbounded := &algo.IsochroneResult{
		StartNode:      4,
		MaxCost:        math.Inf(1),
		TravelCosts:    map[algo.NodeID]float64{4: 0, 1: 72},
		ReachableNodes: 2,
	}
	require.NoError(t, cache.Set(ctx, "car:v1:4:inf", unbounded))
	raw, err := mr.Get(store.REDIS_KEY_PREFIX + "car:v1:4:inf")
	require.NoError(t, err)
	assert.Contains(t, raw, `"max_cost":"inf"`)
	got, err = cache.Get(ctx, "car:v1:4:inf")
	require.NoError(t, err)
	assert.Equal(t, unbounded, got)
	assert.True(t, math.IsInf(got.MaxCost, 1))

	// NaN仍无法编码
	assert.Error(t, cache.Set(ctx, "nan", &algo.IsochroneResult{MaxCost: math.NaN()}))

	require.NoError(t, mr.Set(store.REDIS_KEY_PREFIX+"broken", "{"))
	_, err = cache.Get(ctx, "broken")
	assert.Error(t, err)
}

func TestRedisCacheWithRouter(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestCache(t)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	r := router.New(logger.WithField("module", "store_test"), router.WithCache(cache))
	defer r.Close()
	_, err := r.Load(router.SimpleGridSource(), router.LoadOptions{Mode: algo.Car})
	require.NoError(t, err)

	first, err := r.Isochrone(ctx, algo.Car, 0, 144)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	second, err := r.Isochrone(ctx, algo.Car, 0, 144)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// 缓存不可用时仍然返回计算结果
	mr.Close()
	third, err := r.Isochrone(ctx, algo.Car, 0, 216)
	require.NoError(t, err)
	assert.Equal(t, 8, third.ReachableNodes)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := store.NewRedisClient(ctx, addr)
	assert.Error(t, err)
}
