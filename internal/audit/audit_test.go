package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koperasi-digital/koperasi-core/internal/platform/store"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	newRecorder := func() *Recorder {
		r := NewRecorder(store.NewMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
		r.WithNow(func() time.Time { return fixed })
		return r
	}

	t.Run("stamps defaults on append", func(t *testing.T) {
		r := newRecorder()
		require.NoError(t, r.Record(ctx, Entry{Action: "anggota.keluar", AnggotaID: "A001"}))

		entries, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotEmpty(t, entries[0].ID)
		assert.Equal(t, fixed, entries[0].Timestamp)
		assert.Equal(t, SeverityInfo, entries[0].Severity)
	})

	t.Run("keeps explicit fields", func(t *testing.T) {
		r := newRecorder()
		stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, r.Record(ctx, Entry{
			ID:        "fixed-id",
			Timestamp: stamp,
			Action:    "rollback.batch",
			BatchID:   "BATCH_001",
			Severity:  SeverityError,
			Details:   map[string]any{"errorCount": 2},
		}))

		entries, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "fixed-id", entries[0].ID)
		assert.Equal(t, stamp, entries[0].Timestamp)
		assert.Equal(t, SeverityError, entries[0].Severity)
	})

	t.Run("appends in order", func(t *testing.T) {
		r := newRecorder()
		for _, action := range []string{"one", "two", "three"} {
			require.NoError(t, r.Record(ctx, Entry{Action: action}))
		}
		entries, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "one", entries[0].Action)
		assert.Equal(t, "three", entries[2].Action)
	})
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFor(SeverityError))
	assert.Equal(t, slog.LevelWarn, levelFor(SeverityWarning))
	assert.Equal(t, slog.LevelInfo, levelFor(SeverityInfo))
	assert.Equal(t, slog.LevelInfo, levelFor(""))
}
