// Package reveal drives the staggered show/hold/hide loop of the hero lines.
//
// A Sequencer is a single timer-driven state machine. Every transition is a
// suspension point on the sequencer's clock and every suspension point
// observes cancellation, so a closed sequencer never emits again.
package reveal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Phase is the visual phase of the line group.
type Phase int

const (
	// Hidden means every line is invisible and offset. The pause between
	// cycles is spent here.
	Hidden Phase = iota
	// Revealing means lines are appearing one by one.
	Revealing
	// Held means every line is visible.
	Held
	// Hiding means the group is fading out together.
	Hiding
)

func (p Phase) String() string {
	switch p {
	case Hidden:
		return "hidden"
	case Revealing:
		return "revealing"
	case Held:
		return "held"
	case Hiding:
		return "hiding"
	default:
		return "unknown"
	}
}

// ErrRunning is returned by Run when the sequencer is already being driven.
var ErrRunning = errors.New("reveal: sequencer already running")

// Event reports one transition.
type Event struct {
	Cycle   int
	Phase   Phase
	Line    int
	Visible []bool
}

// Observer receives events on the sequencer's goroutine.
type Observer func(Event)

// State is a point-in-time copy of the sequencer.
type State struct {
	Cycle   int
	Phase   Phase
	Visible []bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock sets the clock used for every wait.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Sequencer) { s.clock = clock }
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(s *Sequencer) { s.timing = t }
}

// Sequencer cycles a fixed set of lines through the reveal phases until it is
// cancelled.
type Sequencer struct {
	lines  []string
	timing Timing
	clock  clockwork.Clock

	mu      sync.Mutex
	state   State
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a sequencer in the Hidden phase.
func New(lines []string, opts ...Option) *Sequencer {
	s := &Sequencer{
		lines:  append([]string(nil), lines...),
		timing: DefaultTiming(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = State{Phase: Hidden, Visible: make([]bool, len(s.lines))}
	return s
}

// Lines returns a copy of the lines being sequenced.
func (s *Sequencer) Lines() []string { return append([]string(nil), s.lines...) }

// Timing returns the cycle timing.
func (s *Sequencer) Timing() Timing { return s.timing }

// Snapshot returns the current state.
func (s *Sequencer) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Sequencer) copyState() State {
	st := s.state
	st.Visible = append([]bool(nil), s.state.Visible...)
	return st
}

// Run drives the loop on the calling goroutine until ctx ends and returns
// ctx's error. observer may be nil.
func (s *Sequencer) Run(ctx context.Context, observer Observer) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	steps := Plan(len(s.lines), s.timing)
	gap := s.timing.Gap(len(s.lines))
	for cycle := 0; ; cycle++ {
		for i, st := range steps {
			wait := st.After
			if i == 0 && cycle > 0 {
				wait = gap
			}
			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
			ev := s.apply(cycle, st)
			if observer != nil {
				observer(ev)
			}
		}
	}
}

// sleep waits d on the clock. A timer that fired while ctx was being
// cancelled still reports the cancellation.
func (s *Sequencer) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := s.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
	}
	return ctx.Err()
}

func (s *Sequencer) apply(cycle int, st Step) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cycle = cycle
	s.state.Phase = st.Phase
	switch {
	case st.Line >= 0:
		s.state.Visible[st.Line] = true
	case st.Phase == Hiding:
		clear(s.state.Visible)
	}
	snap := s.copyState()
	return Event{Cycle: cycle, Phase: st.Phase, Line: st.Line, Visible: snap.Visible}
}

// Start runs the loop on a goroutine owned by the sequencer. It does nothing
// if the sequencer was already started.
func (s *Sequencer) Start(observer Observer) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		_ = s.Run(ctx, observer)
	}()
}

// Close stops a loop begun with Start and waits for it to exit. The observer
// is never called once Close has returned.
func (s *Sequencer) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
