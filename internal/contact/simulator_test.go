package contact

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var msg = Message{Name: "Ada", Email: "ada@Example.com", Body: "Hello"}

func parked(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
}

func TestSubmitTimeline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sim := NewSimulator(WithClock(clock))
	require.Equal(t, Idle, sim.State())

	transitions := make(chan Transition, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- sim.Submit(context.Background(), msg, func(tr Transition) { transitions <- tr })
	}()

	assert.Equal(t, Transition{State: Submitting, At: 0}, <-transitions)

	parked(t, clock)
	clock.Advance(1499 * time.Millisecond)
	assert.Equal(t, Submitting, sim.State())
	clock.Advance(time.Millisecond)
	assert.Equal(t, Transition{State: Success, At: 1500 * time.Millisecond}, <-transitions)

	parked(t, clock)
	clock.Advance(1999 * time.Millisecond)
	assert.Equal(t, Success, sim.State())
	clock.Advance(time.Millisecond)
	assert.Equal(t, Transition{State: Closed, At: 3500 * time.Millisecond}, <-transitions)

	require.NoError(t, <-errc)
	assert.Equal(t, Closed, sim.State())
}

func TestSubmitIsOneShot(t *testing.T) {
	sim := NewSimulator(WithDelays(0, 0))
	require.NoError(t, sim.Submit(context.Background(), msg, nil))
	require.ErrorIs(t, sim.Submit(context.Background(), msg, nil), ErrAlreadySubmitted)
}

func TestCancelledSubmitFreezes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sim := NewSimulator(WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())

	var got []State
	errc := make(chan error, 1)
	go func() {
		errc <- sim.Submit(ctx, msg, func(tr Transition) { got = append(got, tr.State) })
	}()

	parked(t, clock)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	clock.Advance(time.Hour)
	assert.Equal(t, []State{Submitting}, got)
	assert.Equal(t, Submitting, sim.State())
}

func TestSubmitLogsWithoutBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sim := NewSimulator(WithDelays(0, 0), WithLogger(zap.New(core)))
	require.NoError(t, sim.Submit(context.Background(), msg, nil))

	entries := logs.FilterMessage("contact submission simulated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "example.com", fields["email_domain"])
	assert.NotContains(t, fields, "message")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "unknown", State(9).String())
}
