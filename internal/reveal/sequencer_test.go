package reveal

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

var heroLines = []string{
	"Efficiency matters.",
	"I deliver solutions that work end-to-end.",
	"And I keep delivering until the job is done right.",
}

func TestPlanOffsets(t *testing.T) {
	timing := DefaultTiming()
	steps := Plan(3, timing)

	var at time.Duration
	var offsets []time.Duration
	var phases []Phase
	for _, st := range steps {
		at += st.After
		offsets = append(offsets, at)
		phases = append(phases, st.Phase)
	}
	assert.Equal(t, []time.Duration{
		0,
		200 * time.Millisecond,
		600 * time.Millisecond,
		1000 * time.Millisecond,
		1600 * time.Millisecond,
		4600 * time.Millisecond,
		4900 * time.Millisecond,
	}, offsets)
	assert.Equal(t, []Phase{Revealing, Revealing, Revealing, Revealing, Held, Hiding, Hidden}, phases)
	assert.Equal(t, 1100*time.Millisecond, timing.Gap(3), "cycles start on the 6s period")
}

func TestGapUsesPauseWhenPeriodIsShorter(t *testing.T) {
	timing := DefaultTiming()
	timing.Period = 0
	assert.Equal(t, timing.Pause, timing.Gap(3))
}

func TestGapNeverZeroLength(t *testing.T) {
	assert.Equal(t, time.Millisecond, Timing{}.Gap(0))
}

type recorder struct {
	events chan Event
}

func newRecorder() *recorder { return &recorder{events: make(chan Event, 128)} }

func (r *recorder) observe(ev Event) { r.events <- ev }

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

// step waits for the sequencer to park on a timer and then moves past it.
func step(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
}

func TestSequencerVisitsPhasesInOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(heroLines, WithClock(clock))
	require.Equal(t, Hidden, s.Snapshot().Phase)

	rec := newRecorder()
	s.Start(rec.observe)
	defer s.Close()

	var phases []Phase
	last := Hidden
	phases = append(phases, last)
	for len(phases) < 9 {
		ev := rec.next(t)
		if ev.Phase != last {
			phases = append(phases, ev.Phase)
			last = ev.Phase
		}
		if len(phases) < 9 {
			step(t, clock)
		}
	}
	assert.Equal(t, []Phase{
		Hidden, Revealing, Held, Hiding, Hidden,
		Revealing, Held, Hiding, Hidden,
	}, phases)
}

func TestLinesRevealInOrderAndHideTogether(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(heroLines, WithClock(clock))
	rec := newRecorder()
	s.Start(rec.observe)
	defer s.Close()

	ev := rec.next(t)
	assert.Equal(t, Revealing, ev.Phase)
	assert.Equal(t, -1, ev.Line)
	assert.Equal(t, []bool{false, false, false}, ev.Visible)

	for i := range heroLines {
		step(t, clock)
		ev = rec.next(t)
		assert.Equal(t, i, ev.Line)
		for j, vis := range ev.Visible {
			assert.Equal(t, j <= i, vis, "line %d after revealing %d", j, i)
		}
	}

	step(t, clock)
	ev = rec.next(t)
	assert.Equal(t, Held, ev.Phase)
	assert.Equal(t, []bool{true, true, true}, ev.Visible)

	step(t, clock)
	ev = rec.next(t)
	assert.Equal(t, Hiding, ev.Phase)
	assert.Equal(t, []bool{false, false, false}, ev.Visible)
}

func TestFirstLineWaitsInitialDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(heroLines, WithClock(clock))
	rec := newRecorder()
	s.Start(rec.observe)
	defer s.Close()

	assert.Equal(t, Revealing, rec.next(t).Phase)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(199 * time.Millisecond)
	rec.none(t)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 0, rec.next(t).Line)
}

func TestCloseStopsTransitions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(heroLines, WithClock(clock))
	rec := newRecorder()
	s.Start(rec.observe)

	rec.next(t)
	step(t, clock)
	rec.next(t)

	s.Close()
	before := s.Snapshot()
	clock.Advance(time.Hour)
	rec.none(t)
	assert.Equal(t, before, s.Snapshot())

	// Close and Start after Close are both inert.
	s.Close()
	s.Start(rec.observe)
	rec.none(t)
}

func TestRunReturnsContextError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(heroLines, WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, nil) }()

	wctx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer wcancel()
	require.NoError(t, clock.BlockUntilContext(wctx, 1))
	require.ErrorIs(t, s.Run(context.Background(), nil), ErrRunning)

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "revealing", Revealing.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
