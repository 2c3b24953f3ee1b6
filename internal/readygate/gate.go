// Package readygate implements a one-shot delayed loading-to-ready switch used
// to hold a skeleton placeholder in front of a content block for a minimum
// duration.
package readygate

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the clock the gate schedules on.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Gate) { g.clock = clock }
}

// Gate flips from not-ready to ready exactly once, delay after Start. Cancel
// before that point keeps it not-ready for the rest of its life.
type Gate struct {
	clock clockwork.Clock
	delay time.Duration

	mu        sync.Mutex
	timer     clockwork.Timer
	started   bool
	cancelled bool
	ready     bool
	done      chan struct{}
}

// New returns a gate that becomes ready delay after Start. A non-positive delay
// makes the gate ready on the next timer tick after Start.
func New(delay time.Duration, opts ...Option) *Gate {
	g := &Gate{
		clock: clockwork.NewRealClock(),
		delay: max(delay, 0),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Delay returns the configured delay.
func (g *Gate) Delay() time.Duration { return g.delay }

// Start arms the timer. Calls after the first, or after Cancel, do nothing.
func (g *Gate) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started || g.cancelled {
		return
	}
	g.started = true
	g.timer = g.clock.AfterFunc(g.delay, g.fire)
}

func (g *Gate) fire() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelled || g.ready {
		return
	}
	g.ready = true
	close(g.done)
}

// Cancel disarms a pending timer. It is safe to call at any time and from any
// goroutine; once a gate is ready Cancel has no effect on it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return
	}
	g.cancelled = true
	if g.timer != nil {
		g.timer.Stop()
	}
}

// Ready reports whether the gate has opened.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// Done returns a channel closed when the gate opens. It is never closed for a
// cancelled gate.
func (g *Gate) Done() <-chan struct{} { return g.done }

// Wait blocks until the gate opens or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
