package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback restores captured values", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "a", []byte("one")))
		require.NoError(t, m.Set(ctx, "b", []byte("two")))

		uow, err := Begin(ctx, m, "a", "b")
		require.NoError(t, err)

		require.NoError(t, m.Set(ctx, "a", []byte("changed")))
		require.NoError(t, m.Delete(ctx, "b"))

		require.NoError(t, uow.Rollback(ctx))

		a, err := m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), a)
		b, err := m.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), b)
	})

	t.Run("rollback deletes keys that were absent at begin", func(t *testing.T) {
		m := NewMemory()
		uow, err := Begin(ctx, m, "new")
		require.NoError(t, err)

		require.NoError(t, m.Set(ctx, "new", []byte("created mid-operation")))
		require.NoError(t, uow.Rollback(ctx))

		raw, err := m.Get(ctx, "new")
		require.NoError(t, err)
		assert.Nil(t, raw)
	})

	t.Run("commit makes a later rollback a no-op", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "a", []byte("one")))

		uow, err := Begin(ctx, m, "a")
		require.NoError(t, err)
		require.NoError(t, m.Set(ctx, "a", []byte("final")))
		uow.Commit()

		require.NoError(t, uow.Rollback(ctx))
		raw, err := m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("final"), raw)
	})

	t.Run("rollback is idempotent", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "a", []byte("one")))

		uow, err := Begin(ctx, m, "a")
		require.NoError(t, err)
		require.NoError(t, m.Set(ctx, "a", []byte("two")))
		require.NoError(t, uow.Rollback(ctx))

		// Writes after the first rollback stay put.
		require.NoError(t, m.Set(ctx, "a", []byte("three")))
		require.NoError(t, uow.Rollback(ctx))

		raw, err := m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("three"), raw)
	})

	t.Run("nil unit of work tolerates rollback", func(t *testing.T) {
		var uow *UnitOfWork
		assert.NoError(t, uow.Rollback(ctx))
		uow.Commit()
	})
}
