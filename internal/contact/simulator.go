// Package contact simulates the contact modal's submission. Nothing leaves the
// process: a submission is a timed walk through Submitting and Success that
// ends with the modal closed.
package contact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// State is the modal's submission state.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrAlreadySubmitted is returned when Submit is called on a simulator that
// has left Idle.
var ErrAlreadySubmitted = errors.New("contact: form already submitted")

// Default delays of the simulated round trip.
const (
	DefaultSubmitDelay  = 1500 * time.Millisecond
	DefaultSuccessDelay = 2000 * time.Millisecond
)

// Message is the contact form payload.
type Message struct {
	Name  string `form:"name" json:"name" binding:"required,max=200"`
	Email string `form:"email" json:"email" binding:"required,email"`
	Body  string `form:"message" json:"message" binding:"required,max=5000"`
}

// Transition is reported to an Observer on every state change.
type Transition struct {
	State State
	// At is the time since Submit was called.
	At time.Duration
}

// Observer receives transitions on the submitting goroutine.
type Observer func(Transition)

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock sets the simulator clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Simulator) { s.clock = clock }
}

// WithDelays overrides the default delays.
func WithDelays(submit, success time.Duration) Option {
	return func(s *Simulator) {
		s.submitDelay = submit
		s.successDelay = success
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// Simulator is the one-shot Idle → Submitting → Success → Closed machine of a
// single modal instance.
type Simulator struct {
	clock        clockwork.Clock
	submitDelay  time.Duration
	successDelay time.Duration
	logger       *zap.Logger

	mu    sync.Mutex
	state State
}

// NewSimulator returns an Idle simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		clock:        clockwork.NewRealClock(),
		submitDelay:  DefaultSubmitDelay,
		successDelay: DefaultSuccessDelay,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit walks the machine to Closed, blocking for the configured delays.
// If ctx ends first the machine stays where it was and ctx's error is
// returned.
func (s *Simulator) Submit(ctx context.Context, msg Message, observer Observer) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.mu.Unlock()

	start := s.clock.Now()
	s.logger.Info("contact submission simulated",
		zap.Int("name_len", len(msg.Name)),
		zap.String("email_domain", emailDomain(msg.Email)),
		zap.Int("message_len", len(msg.Body)),
	)

	if err := s.enter(ctx, Submitting, start, observer); err != nil {
		return err
	}
	if err := s.wait(ctx, s.submitDelay); err != nil {
		return err
	}
	if err := s.enter(ctx, Success, start, observer); err != nil {
		return err
	}
	if err := s.wait(ctx, s.successDelay); err != nil {
		return err
	}
	return s.enter(ctx, Closed, start, observer)
}

func (s *Simulator) enter(ctx context.Context, next State, start time.Time, observer Observer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if next == Submitting && s.state != Idle {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.state = next
	s.mu.Unlock()
	if observer != nil {
		observer(Transition{State: next, At: s.clock.Since(start)})
	}
	return nil
}

func (s *Simulator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

func emailDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}
