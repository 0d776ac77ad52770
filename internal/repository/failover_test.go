package repository

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"labcare/internal/models"
	"labcare/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPrimaryDown = errors.New("connection refused")

// flakyKV is a MemoryStore that fails every call while down is set.
type flakyKV struct {
	*MemoryStore
	down  atomic.Bool
	calls atomic.Int32
}

func newFlakyKV() *flakyKV {
	return &flakyKV{MemoryStore: NewMemoryStore()}
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.calls.Add(1)
	if f.down.Load() {
		return "", false, errPrimaryDown
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.calls.Add(1)
	if f.down.Load() {
		return errPrimaryDown
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
	f.calls.Add(1)
	if f.down.Load() {
		return errPrimaryDown
	}
	return f.MemoryStore.Delete(ctx, key)
}

func newTestFailover(primary *flakyKV, fallback *MemoryStore, now *time.Time) *FailoverStore {
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStore(primary, fallback, &logger)
	repo.now = func() time.Time { return *now }
	return repo
}

func TestFailoverStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("PrimaryReadsAreMirrored", func(t *testing.T) {
		primary, fallback := newFlakyKV(), NewMemoryStore()
		require.NoError(t, primary.MemoryStore.Set(ctx, "a", "1"))
		repo := newTestFailover(primary, fallback, &now)

		got, found, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "1", got)
		assert.False(t, repo.Degraded())

		mirrored, found, _ := fallback.Get(ctx, "a")
		assert.True(t, found)
		assert.Equal(t, "1", mirrored)
	})

	t.Run("WritesGoToBoth", func(t *testing.T) {
		primary, fallback := newFlakyKV(), NewMemoryStore()
		repo := newTestFailover(primary, fallback, &now)

		require.NoError(t, repo.Set(ctx, "k", "v"))
		p, _, _ := primary.MemoryStore.Get(ctx, "k")
		f, _, _ := fallback.Get(ctx, "k")
		assert.Equal(t, "v", p)
		assert.Equal(t, "v", f)

		require.NoError(t, repo.Delete(ctx, "k"))
		_, found, _ := fallback.Get(ctx, "k")
		assert.False(t, found)
	})

	t.Run("PrimaryFailServesCurrentValue", func(t *testing.T) {
		primary, fallback := newFlakyKV(), NewMemoryStore()
		repo := newTestFailover(primary, fallback, &now)
		require.NoError(t, repo.Set(ctx, "b", "2"))

		primary.down.Store(true)
		got, found, err := repo.Get(ctx, "b")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2", got)
		assert.True(t, repo.Degraded())
	})

	t.Run("DegradedWithinIntervalSkipsPrimary", func(t *testing.T) {
		primary, fallback := newFlakyKV(), NewMemoryStore()
		clock := now
		repo := newTestFailover(primary, fallback, &clock)
		primary.down.Store(true)
		_, _, _ = repo.Get(ctx, "c")

		before := primary.calls.Load()
		require.NoError(t, repo.Set(ctx, "c", "3"))
		_, _, err := repo.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, before, primary.calls.Load())
	})

	t.Run("RecoveryCopiesOutageWrites", func(t *testing.T) {
		primary, fallback := newFlakyKV(), NewMemoryStore()
		clock := now
		repo := newTestFailover(primary, fallback, &clock)
		require.NoError(t, repo.Set(ctx, "gone", "x"))

		primary.down.Store(true)
		require.NoError(t, repo.Set(ctx, "d", "4"))
		require.NoError(t, repo.Delete(ctx, "gone"))
		assert.True(t, repo.Degraded())

		clock = clock.Add(2 * time.Minute)
		_, _, err := repo.Get(ctx, "d")
		require.NoError(t, err)
		assert.True(t, repo.Degraded(), "primary still down")

		primary.down.Store(false)
		clock = clock.Add(2 * time.Minute)
		got, _, err := repo.Get(ctx, "d")
		require.NoError(t, err)
		assert.Equal(t, "4", got)
		assert.False(t, repo.Degraded())

		p, _, _ := primary.MemoryStore.Get(ctx, "d")
		assert.Equal(t, "4", p)
		_, found, _ := primary.MemoryStore.Get(ctx, "gone")
		assert.False(t, found)
	})
}

func TestFailoverKeepsBookingsAcrossOutage(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	primary, fallback := newFlakyKV(), NewMemoryStore()
	kv := newTestFailover(primary, fallback, &clock)

	logger := zerolog.Nop()
	repo := NewBookingRepository(store.New(kv, "", &logger), NewIDGenerator(nil), nil)

	names := func() []string {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, b := range list {
			out = append(out, b.FullName)
		}
		return out
	}

	_, err := repo.Append(ctx, models.Booking{FullName: "a"})
	require.NoError(t, err)

	primary.down.Store(true)
	_, err = repo.Append(ctx, models.Booking{FullName: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names())

	primary.down.Store(false)
	clock = clock.Add(2 * time.Minute)
	_, err = repo.Append(ctx, models.Booking{FullName: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names())
	assert.False(t, kv.Degraded())

	// primary alone holds everything once recovered
	direct := NewBookingRepository(store.New(primary.MemoryStore, "", &logger), NewIDGenerator(nil), nil)
	stored, err := direct.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}
