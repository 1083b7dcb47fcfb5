package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	r := newRedisStore(t)

	t.Run("absent key reads as nil without error", func(t *testing.T) {
		raw, err := r.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, "anggota", []byte(`[{"id":"A001"}]`)))
		raw, err := r.Get(ctx, "anggota")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":"A001"}]`), raw)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, "tmp", []byte("v")))
		require.NoError(t, r.Delete(ctx, "tmp"))
		raw, err := r.Get(ctx, "tmp")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})

	t.Run("unit of work works over redis", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, "jurnal", []byte("[1]")))

		uow, err := Begin(ctx, r, "jurnal", "pengembalian")
		require.NoError(t, err)
		require.NoError(t, r.Set(ctx, "jurnal", []byte("[1,2]")))
		require.NoError(t, r.Set(ctx, "pengembalian", []byte("[9]")))

		require.NoError(t, uow.Rollback(ctx))

		jurnal, err := r.Get(ctx, "jurnal")
		require.NoError(t, err)
		assert.Equal(t, []byte("[1]"), jurnal)
		peng, err := r.Get(ctx, "pengembalian")
		require.NoError(t, err)
		assert.Nil(t, peng)
	})
}
