package kernel

import (
	"fmt"
	"io"
)

// Stats counts scheduler activity since construction.
type Stats struct {
	Ticks      uint64
	Dispatches uint64
	// DelaySkips counts Delaying coroutines whose timer had not expired.
	DelaySkips uint64
	Terminated uint64
}

// Scheduler walks a Registry once per Tick.
type Scheduler struct {
	reg     *Registry
	stats   Stats
	current *Coroutine

	strict bool
	warn   func(c *Coroutine)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithStrict makes the scheduler report bodies that returned without
// suspending. warn is called after such a dispatch; the status is left as
// is.
func WithStrict(warn func(c *Coroutine)) SchedulerOption {
	return func(s *Scheduler) {
		s.strict = warn != nil
		s.warn = warn
	}
}

// NewScheduler returns a scheduler over r, or over Default when r is nil.
func NewScheduler(r *Registry, opts ...SchedulerOption) *Scheduler {
	if r == nil {
		r = Default
	}
	s := &Scheduler{reg: r}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Registry() *Registry { return s.reg }

// Setup calls every coroutine's setup hook once, in tick order.
func (s *Scheduler) Setup() {
	for c := s.reg.root; c != nil; c = c.next {
		if c.setup != nil {
			c.setup()
		}
	}
}

// Tick visits every coroutine once:
//
//   - Suspended and Terminated are skipped.
//   - Delaying is dispatched only once its timer has expired.
//   - Yielding is dispatched.
//   - Ending becomes Terminated.
//
// A panic in a body invokes the panic handler and is re-raised.
func (s *Scheduler) Tick() {
	defer s.recoverBody()

	s.stats.Ticks++
	for c := s.reg.root; c != nil; c = c.next {
		switch c.status {
		case Yielding:
			s.dispatch(c)
		case Delaying:
			if !c.timer.Expired(s.reg.clk) {
				s.stats.DelaySkips++
				continue
			}
			s.dispatch(c)
		case Ending:
			c.status = Terminated
			s.stats.Terminated++
		}
	}
	s.current = nil
}

func (s *Scheduler) dispatch(c *Coroutine) {
	s.current = c
	if !c.Run() {
		return
	}
	s.stats.Dispatches++
	if s.strict && c.status == Running {
		s.warn(c)
	}
}

func (s *Scheduler) recoverBody() {
	v := recover()
	if v == nil {
		return
	}
	c := s.current
	s.current = nil
	info := PanicInfo{Value: v}
	if c != nil {
		info.Name = c.name
		info.Label = c.label
		info.Status = c.status
	}
	raisePanic(info)
	panic(v)
}

// Stats returns the activity counters.
func (s *Scheduler) Stats() Stats { return s.stats }

// List writes one line per coroutine with its name and status.
func (s *Scheduler) List(w io.Writer) error {
	for c := s.reg.root; c != nil; c = c.next {
		name := c.name
		if name == "" {
			name = fmt.Sprintf("%p", c)
		}
		if _, err := fmt.Fprintf(w, "Coroutine %s; status: %s\n", name, c.status); err != nil {
			return err
		}
	}
	return nil
}
