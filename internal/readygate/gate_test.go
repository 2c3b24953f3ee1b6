package readygate

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitReady(t *testing.T, g *Gate) {
	t.Helper()
	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("gate did not open")
	}
	require.True(t, g.Ready())
}

func TestGateOpensAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(800*time.Millisecond, WithClock(clock))
	g.Start()
	assert.False(t, g.Ready())

	clock.Advance(799 * time.Millisecond)
	assert.False(t, g.Ready())

	clock.Advance(time.Millisecond)
	waitReady(t, g)
}

func TestGateIsNotReadyBeforeStart(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(time.Second, WithClock(clock))
	clock.Advance(time.Hour)
	assert.False(t, g.Ready())
}

func TestGateStartIsOneShot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(time.Second, WithClock(clock))
	g.Start()
	clock.Advance(500 * time.Millisecond)
	g.Start()
	clock.Advance(500 * time.Millisecond)
	waitReady(t, g)

	// A second fire must not panic on the closed channel.
	g.fire()
	assert.True(t, g.Ready())
}

func TestCancelKeepsGateClosedForever(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(1200*time.Millisecond, WithClock(clock))
	g.Start()
	clock.Advance(time.Second)
	g.Cancel()
	clock.Advance(time.Hour)
	assert.False(t, g.Ready())

	g.Start()
	clock.Advance(time.Hour)
	assert.False(t, g.Ready())

	// A callback that was already in flight when Cancel ran is suppressed.
	g.fire()
	assert.False(t, g.Ready())
}

func TestCancelAfterReadyIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(time.Second, WithClock(clock))
	g.Start()
	clock.Advance(time.Second)
	waitReady(t, g)
	g.Cancel()
	assert.True(t, g.Ready())
}

func TestWait(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(time.Second, WithClock(clock))
	g.Start()

	errc := make(chan error, 1)
	go func() { errc <- g.Wait(context.Background()) }()
	clock.Advance(time.Second)
	require.NoError(t, <-errc)
}

func TestWaitHonoursContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := New(time.Second, WithClock(clock))
	g.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, g.Wait(ctx), context.Canceled)
	g.Cancel()
}

func TestNegativeDelayClamps(t *testing.T) {
	g := New(-time.Second)
	assert.Equal(t, time.Duration(0), g.Delay())
}
