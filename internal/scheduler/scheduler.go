// Package scheduler drives the animation: it ticks the starfield every frame
// and now and then launches a comet, which runs to completion before the
// next star update.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/litescript/ls-starfield/internal/comet"
	"github.com/litescript/ls-starfield/internal/config"
	"github.com/litescript/ls-starfield/internal/logging"
	"github.com/litescript/ls-starfield/internal/randsrc"
	"github.com/litescript/ls-starfield/internal/starfield"
	"github.com/litescript/ls-starfield/internal/strip"
)

// State is the scheduler's current phase.
type State int

const (
	Idle        State = iota // twinkling, evaluating comet launches
	CometActive              // inside a comet traversal
)

func (s State) String() string {
	if s == CometActive {
		return "comet"
	}
	return "idle"
}

// Observer is told about ticks and comets. Calls happen on the animation
// goroutine and must not block.
type Observer interface {
	Ticked(tick uint64)
	CometStarted(p comet.Params)
	CometFinished(p comet.Params)
}

// Scheduler owns the animation loop. It is not safe for concurrent use.
type Scheduler struct {
	cfg    config.Config
	field  *starfield.Field
	driver strip.Driver
	src    randsrc.Source

	sleep    comet.SleepFunc
	observer Observer
	logger   *logging.Logger
	maxTicks uint64

	state   State
	started bool
	ticks   uint64
	comets  uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSleep replaces time.Sleep, e.g. with a no-op or recording func in tests.
func WithSleep(fn comet.SleepFunc) Option {
	return func(s *Scheduler) { s.sleep = fn }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMaxTicks makes Run return after n ticks. Zero means run forever.
func WithMaxTicks(n uint64) Option {
	return func(s *Scheduler) { s.maxTicks = n }
}

// New creates a scheduler. field must already be initialised.
func New(cfg config.Config, field *starfield.Field, driver strip.Driver, src randsrc.Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		field:  field,
		driver: driver,
		src:    src,
		sleep:  time.Sleep,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initialises the driver. It is called once, before the first tick.
func (s *Scheduler) Start() error {
	if s.started {
		return nil
	}
	if err := s.driver.Start(); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}
	s.started = true
	s.logger.Debug("Driver started: %d elements", s.driver.Len())
	return nil
}

// Tick runs one frame: update and draw the stars, maybe run a comet, then
// sleep for the frame delay.
func (s *Scheduler) Tick() error {
	s.field.Update()
	if err := s.field.RenderTo(s.driver); err != nil {
		return fmt.Errorf("render stars: %w", err)
	}
	if err := strip.Show(s.driver); err != nil {
		return fmt.Errorf("show stars: %w", err)
	}

	if s.shouldLaunch() {
		if err := s.runComet(); err != nil {
			return err
		}
	}

	s.sleep(s.cfg.FrameDelay)
	s.ticks++
	if s.observer != nil {
		s.observer.Ticked(s.ticks)
	}
	return nil
}

// shouldLaunch jitters the base chance by a factor in [0.5, 1.5] before the
// probability draw.
func (s *Scheduler) shouldLaunch() bool {
	p := s.cfg.CometBaseChance * s.src.Uniform(0.5, 1.5)
	return s.src.Float64() < p
}

func (s *Scheduler) runComet() error {
	p := comet.Draw(s.cfg, s.field.Len(), s.src)
	s.comets++
	s.logger.Debug("Comet %d: %s, trail %d, step %v, head %.2f",
		s.comets, p.Direction, p.Trail, p.StepDelay, p.HeadBrightness)

	s.state = CometActive
	if s.observer != nil {
		s.observer.CometStarted(p)
	}

	err := p.Execute(s.field, s.driver, s.sleep)
	s.state = Idle
	// observers see the comet end even when the driver fails mid-traversal
	if s.observer != nil {
		s.observer.CometFinished(p)
	}
	if err != nil {
		return fmt.Errorf("comet %d: %w", s.comets, err)
	}
	return nil
}

// Run starts the driver and ticks until ctx is cancelled, the tick limit is
// reached or the driver fails. Cancellation is only observed between ticks.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	s.logger.Info("Animation running: %d elements, frame delay %v", s.field.Len(), s.cfg.FrameDelay)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Animation loop shutting down after %d ticks", s.ticks)
			return nil
		default:
		}

		if err := s.Tick(); err != nil {
			s.logger.Error("Animation stopped: %v", err)
			return err
		}

		if s.maxTicks > 0 && s.ticks >= s.maxTicks {
			s.logger.Info("Reached %d ticks, %d comets", s.ticks, s.comets)
			return nil
		}
	}
}

// State returns the current phase.
func (s *Scheduler) State() State {
	return s.state
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks
}

// Comets returns the number of comets launched.
func (s *Scheduler) Comets() uint64 {
	return s.comets
}
