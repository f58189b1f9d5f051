package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	r, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return r, mr
}

func TestRedis_GetSet(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	data, err := r.GetCache(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, r.SetCache(ctx, "enrich:spotify:a|b", []byte(`{"matched":true}`), time.Hour))

	data, err = r.GetCache(ctx, "enrich:spotify:a|b")
	require.NoError(t, err)
	assert.Equal(t, `{"matched":true}`, string(data))

	assert.True(t, mr.Exists(keyPrefix+"enrich:spotify:a|b"))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"enrich:spotify:a|b"))
}

func TestRedis_Expiry(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.SetCache(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	data, err := r.GetCache(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedis_NoTTL(t *testing.T) {
	r, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, r.SetCache(ctx, "k", []byte("v"), -time.Second))
	assert.Equal(t, time.Duration(0), mr.TTL(keyPrefix+"k"))
}

func TestRedis_Health(t *testing.T) {
	r, mr := setupRedis(t)

	assert.NoError(t, r.Health(context.Background()))

	mr.Close()
	assert.Error(t, r.Health(context.Background()))
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}
