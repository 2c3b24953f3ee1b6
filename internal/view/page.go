// Package view owns the timer-driven state of one rendered page view.
//
// A Page is created when a browser mounts the page and closed when it goes
// away. Closing cancels every pending gate and the hero sequencer before the
// event channel is closed, so nothing is delivered to a torn-down view.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/Zachkp/showcase/internal/content"
	"github.com/Zachkp/showcase/internal/readygate"
	"github.com/Zachkp/showcase/internal/reveal"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Block is a content block held behind a skeleton for Delay.
type Block struct {
	Key   string
	Delay time.Duration
}

// Block keys of the page.
const (
	HeroBlock       = "hero"
	MentorshipBlock = "mentorship"
	projectPrefix   = "project:"
)

// ProjectBlock returns the block key of a project card.
func ProjectBlock(id string) string { return projectPrefix + id }

// SiteBlocks lists every gated block of site in page order.
func SiteBlocks(site *content.Site) []Block {
	blocks := []Block{{Key: HeroBlock, Delay: site.Delays.Hero}}
	for _, p := range site.Projects {
		blocks = append(blocks, Block{Key: ProjectBlock(p.ID), Delay: site.Delays.Project})
	}
	return append(blocks, Block{Key: MentorshipBlock, Delay: site.Delays.Mentorship})
}

// EventKind distinguishes page events.
type EventKind string

const (
	EventReady  EventKind = "ready"
	EventReveal EventKind = "reveal"
)

// Event is delivered on Page.Events.
type Event struct {
	Kind   EventKind
	Block  string
	Reveal reveal.Event
}

// Option configures a Page.
type Option func(*options)

type options struct {
	clock  clockwork.Clock
	timing reveal.Timing
	logger *zap.Logger
	buffer int
}

// WithClock sets the clock shared by the page's gates and sequencer.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithTiming overrides the hero sequencer timing.
func WithTiming(t reveal.Timing) Option {
	return func(o *options) { o.timing = t }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(o *options) { o.buffer = n }
}

// Page is the owned state of one page view.
type Page struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	blocks []Block
	gates  map[string]*readygate.Gate
	hero   *reveal.Sequencer
	events chan Event

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Open mounts a page: it arms one gate per block and starts the hero
// sequencer over lines.
func Open(blocks []Block, lines []string, opts ...Option) *Page {
	o := options{
		clock:  clockwork.NewRealClock(),
		timing: reveal.DefaultTiming(),
		logger: zap.NewNop(),
		buffer: 16,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Page{
		ID:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		blocks: append([]Block(nil), blocks...),
		gates:  make(map[string]*readygate.Gate, len(blocks)),
		hero:   reveal.New(lines, reveal.WithClock(o.clock), reveal.WithTiming(o.timing)),
		events: make(chan Event, o.buffer),
	}
	p.logger = o.logger.With(zap.String("view_id", p.ID))

	for _, b := range p.blocks {
		gate := readygate.New(b.Delay, readygate.WithClock(o.clock))
		p.gates[b.Key] = gate
		gate.Start()

		p.wg.Add(1)
		go func(key string) {
			defer p.wg.Done()
			if err := gate.Wait(ctx); err != nil {
				return
			}
			p.emit(Event{Kind: EventReady, Block: key})
		}(b.Key)
	}

	p.hero.Start(func(ev reveal.Event) {
		p.emit(Event{Kind: EventReveal, Reveal: ev})
	})
	p.logger.Debug("page view mounted", zap.Int("blocks", len(p.blocks)))
	return p
}

func (p *Page) emit(ev Event) {
	if p.ctx.Err() != nil {
		return
	}
	select {
	case p.events <- ev:
	case <-p.ctx.Done():
	}
}

// Events returns the page's event stream. It is closed by Close.
func (p *Page) Events() <-chan Event { return p.events }

// Blocks returns the gated blocks in page order.
func (p *Page) Blocks() []Block { return append([]Block(nil), p.blocks...) }

// Ready reports whether the block's gate has opened. Unknown keys are never
// ready.
func (p *Page) Ready(key string) bool {
	gate, ok := p.gates[key]
	return ok && gate.Ready()
}

// Hero returns a snapshot of the hero sequencer.
func (p *Page) Hero() reveal.State { return p.hero.Snapshot() }

// Close tears the page down. It is safe to call more than once.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		for _, gate := range p.gates {
			gate.Cancel()
		}
		p.hero.Close()
		p.wg.Wait()
		close(p.events)
		p.logger.Debug("page view closed")
	})
}
