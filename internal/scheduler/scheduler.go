// Package scheduler coalesces layout requests into debounced passes. At most
// one pass runs at a time; requests that arrive during a pass are queued and
// run right after it.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gompdf/pageflow/internal/doc"
)

// DefaultDebounce approximates one animation frame
const DefaultDebounce = 16 * time.Millisecond

// State is the scheduler state
type State int

const (
	Idle State = iota
	Pending
	Running
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// RunFunc performs one layout pass for d
type RunFunc func(ctx context.Context, d *doc.Doc) error

// Option configures a scheduler
type Option func(*Scheduler)

// WithDebounce sets the coalescing window
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		s.debounce = d
	}
}

// WithClock replaces the timer source
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithReadiness sets a barrier the first pass waits on, such as font loading
func WithReadiness(ready func(ctx context.Context) error) Option {
	return func(s *Scheduler) {
		s.ready = ready
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// Scheduler is a single-slot debounced trigger for layout passes
type Scheduler struct {
	run      RunFunc
	debounce time.Duration
	clock    Clock
	ready    func(ctx context.Context) error
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	timer       Timer
	gen         int
	latest      *doc.Doc
	lastLaidOut *doc.Doc
	queued      bool
	isReady     bool
	closed      bool
	runs        int
	idle        chan struct{}
}

// New creates a scheduler calling run
func New(run RunFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		run:      run,
		debounce: DefaultDebounce,
		clock:    realClock{},
		idle:     make(chan struct{}),
	}
	close(s.idle)
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Request asks for a pass over d. A newer request supersedes a pending one;
// a request made while a pass runs is queued for right after it.
func (s *Scheduler) Request(d *doc.Doc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || d == nil {
		return
	}
	if d == s.lastLaidOut && s.state == Idle {
		return
	}
	if d != s.lastLaidOut {
		s.lastLaidOut = nil
	}
	s.latest = d
	switch s.state {
	case Running:
		s.queued = true
	case Idle:
		s.idle = make(chan struct{})
		fallthrough
	default:
		s.state = Pending
		s.arm()
	}
}

// arm (re)starts the debounce timer; the caller holds mu
func (s *Scheduler) arm() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.debounce, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen int) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != Pending {
		s.mu.Unlock()
		return
	}
	s.state = Running
	s.timer = nil
	needReady := !s.isReady && s.ready != nil
	s.mu.Unlock()

	if needReady {
		if err := s.ready(s.ctx); err != nil {
			s.logf("readiness barrier failed", "error", err)
			s.finish(nil, err)
			return
		}
	}

	s.mu.Lock()
	s.isReady = true
	// edits made during the barrier are part of this pass
	d := s.latest
	s.queued = false
	if d == s.lastLaidOut {
		s.mu.Unlock()
		s.finish(nil, nil)
		return
	}
	s.mu.Unlock()

	err := s.run(s.ctx, d)
	if err != nil {
		s.logf("layout pass failed", "error", err)
	}
	s.finish(d, err)
}

// finish leaves the Running state
func (s *Scheduler) finish(d *doc.Doc, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d != nil {
		s.runs++
		if err == nil {
			s.lastLaidOut = d
		}
	}
	if s.queued && !s.closed {
		s.queued = false
		s.state = Pending
		s.arm()
		return
	}
	s.state = Idle
	close(s.idle)
}

// Flush runs a pending pass now and waits until the scheduler is idle
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Pending {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.gen++
		gen := s.gen
		s.mu.Unlock()
		s.fire(gen)
	} else {
		s.mu.Unlock()
	}
	return s.Wait(ctx)
}

// Wait blocks until no pass is pending or running
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.idle
	s.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Runs returns how many passes have been executed
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Close stops the timer and cancels a running pass's context
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cancel()
	if s.state == Pending {
		s.state = Idle
		close(s.idle)
	}
}

func (s *Scheduler) logf(msg string, args ...any) {
	if s.log != nil {
		s.log.Warn(msg, args...)
	}
}
