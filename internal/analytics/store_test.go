package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNow struct{ t time.Time }

func (f *fixedNow) now() time.Time { return f.t }

func openTestStore(t *testing.T, now *fixedNow) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:", WithSalt("pepper"), WithClock(now.now))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestHashIPIsStableAndOpaque(t *testing.T) {
	store := openTestStore(t, &fixedNow{t: time.Now()})
	h := store.HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, store.HashIP("203.0.113.7"))
	assert.NotEqual(t, h, store.HashIP("203.0.113.8"))
	assert.NotContains(t, h, "203")
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := &fixedNow{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := openTestStore(t, now)

	now.t = now.t.Add(-10 * 24 * time.Hour)
	require.NoError(t, store.Track(ctx, "1.1.1.1", "ua", "/"))
	now.t = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Track(ctx, "1.1.1.1", "ua", "/"))
	now.t = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Track(ctx, "2.2.2.2", "ua", "/"))
	require.NoError(t, store.Track(ctx, "2.2.2.2", "ua", "/privacy"))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 2, stats.UniqueVisitors)
	assert.EqualValues(t, 2, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.Equal(t, []PathStat{{Path: "/", Views: 3}, {Path: "/privacy", Views: 1}}, stats.TopPaths)
	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, store.HashIP("2.2.2.2"), stats.RecentVisitors[0].HashedIP)
}

func TestCleanupRemovesExpiredRows(t *testing.T) {
	ctx := context.Background()
	now := &fixedNow{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := openTestStore(t, now)

	now.t = now.t.AddDate(-2, 0, 0)
	require.NoError(t, store.Track(ctx, "1.1.1.1", "ua", "/"))
	now.t = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Track(ctx, "1.1.1.1", "ua", "/"))

	n, err := store.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestRecorderDrainsOnShutdown(t *testing.T) {
	store := openTestStore(t, &fixedNow{t: time.Now()})
	rec := NewRecorder(store, 4)
	for range 3 {
		require.True(t, rec.Record("1.1.1.1", "ua", "/"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	store := openTestStore(t, &fixedNow{t: time.Now()})
	rec := NewRecorder(store, 1)
	assert.True(t, rec.Record("1.1.1.1", "ua", "/"))
	assert.False(t, rec.Record("1.1.1.1", "ua", "/"))
}

func TestRunCleanupTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	now := &fixedNow{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := openTestStore(t, now)
	clock := clockwork.NewFakeClock()

	done := make(chan error, 1)
	go func() { done <- store.RunCleanup(ctx, clock, time.Hour, 24*time.Hour) }()

	wctx, wcancel := context.WithTimeout(ctx, 2*time.Second)
	defer wcancel()
	require.NoError(t, clock.BlockUntilContext(wctx, 1))

	require.NoError(t, store.Track(ctx, "1.1.1.1", "ua", "/"))
	now.t = now.t.Add(48 * time.Hour)
	clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		recent, err := store.Recent(ctx, 10)
		return err == nil && len(recent) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
